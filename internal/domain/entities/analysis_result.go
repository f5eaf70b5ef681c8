package entities

import (
	"database/sql/driver"
	"encoding/json"
)

// AlignmentEntry pairs one expected token of the target text with the
// transcribed word placed at the same position. A missed token keeps an
// empty ObservedWord with zero similarity.
type AlignmentEntry struct {
	ExpectedWord string  `json:"expected_word"`
	ObservedWord string  `json:"observed_word"`
	StartTime    float64 `json:"start_time"`
	EndTime      float64 `json:"end_time"`
	Similarity   float64 `json:"similarity"`
	Matched      bool    `json:"matched"`
}

// RuleViolation flags a Tajweed rule issue at a word position.
type RuleViolation struct {
	Rule      string  `json:"rule"`
	WordIndex int     `json:"word_index"`
	Word      string  `json:"word"`
	StartTime float64 `json:"start_time"`
	Severity  string  `json:"severity"`
	Note      string  `json:"note,omitempty"`
}

// FluencyDetail breaks the fluency score into its components.
type FluencyDetail struct {
	WordsPerMinute float64 `json:"words_per_minute"`
	LongPauses     int     `json:"long_pauses"`
	PaceScore      float64 `json:"pace_score"`
	PausePenalty   float64 `json:"pause_penalty"`
}

// AnalysisResult is the full outcome of one Tajweed analysis run,
// persisted as jsonb on the job row.
type AnalysisResult struct {
	TranscribedText string `json:"transcribed_text"`
	Provider        string `json:"provider"`

	Alignment  []AlignmentEntry `json:"alignment"`
	Violations []RuleViolation  `json:"violations,omitempty"`

	PronunciationScore float64 `json:"pronunciation_score"`
	FluencyScore       float64 `json:"fluency_score"`
	TimingConsistency  float64 `json:"timing_consistency"`
	OverallScore       float64 `json:"overall_score"`

	Fluency FluencyDetail `json:"fluency_detail"`

	ExpectedWordCount int `json:"expected_word_count"`
	MatchedWordCount  int `json:"matched_word_count"`

	DurationSeconds  float64 `json:"duration_seconds"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
}

// Scan implements sql.Scanner interface for GORM
func (r *AnalysisResult) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	}
	return nil
}

// Value implements driver.Valuer interface for GORM
func (r AnalysisResult) Value() (driver.Value, error) {
	return json.Marshal(r)
}
