package domain

// TranscriptionModel describes one selectable remote speech-to-text model.
type TranscriptionModel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DefaultTranscriptionModel is used when no model is configured.
const DefaultTranscriptionModel = "whisper-1"

// SupportedTranscriptionModels lists remote models the service accepts.
func SupportedTranscriptionModels() []TranscriptionModel {
	return []TranscriptionModel{
		{
			ID:          "whisper-1",
			Name:        "Whisper v2",
			Description: "General-purpose speech recognition, 25 MB per-request limit.",
		},
		{
			ID:          "gpt-4o-transcribe",
			Name:        "GPT-4o Transcribe",
			Description: "Higher accuracy, slower and more expensive per minute.",
		},
		{
			ID:          "gpt-4o-mini-transcribe",
			Name:        "GPT-4o Mini Transcribe",
			Description: "Cheaper variant for long recordings.",
		},
	}
}

// IsSupportedTranscriptionModel reports whether the model ID is accepted.
func IsSupportedTranscriptionModel(id string) bool {
	for _, m := range SupportedTranscriptionModels() {
		if m.ID == id {
			return true
		}
	}
	return false
}
