package outbox

const activityCreatedSchema = `{
  "type": "object",
  "title": "ActivityCreated",
  "properties": {
    "activity_id": {"type": "string"},
    "title": {"type": "string"},
    "category": {"type": "string"},
    "recurrence": {"type": "string"},
    "start_time": {"type": "string"},
    "is_outdoor": {"type": "boolean"},
    "created_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "title", "category", "recurrence", "start_time", "is_outdoor", "created_at"],
  "additionalProperties": false
}`

const statusChangedSchema = `{
  "type": "object",
  "title": "StatusChanged",
  "properties": {
    "activity_id": {"type": "string"},
    "date": {"type": "string", "format": "date"},
    "status": {"type": "string", "enum": ["pending", "done", "missed", "partial", "rescheduled"]},
    "note": {"type": "string"},
    "recorded_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "date", "status", "recorded_at"],
  "additionalProperties": false
}`
