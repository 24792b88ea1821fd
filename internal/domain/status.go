package domain

type State string

const (
	StateIdle      State = "idle"
	StateUploading State = "uploading"
	StateProcessed State = "processed"
	StateError     State = "error"
)
