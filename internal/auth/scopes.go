package auth

// Known OAuth scopes used by the planner API.
const (
	ScopePlannerWrite = "planner:write"
	ScopePlannerRead  = "planner:read"
)
