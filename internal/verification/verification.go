package verification

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Verdict string

const (
	VerdictAffirmed Verdict = "AFFIRMED"
	VerdictRejected Verdict = "REJECTED"
	VerdictFailed   Verdict = "FAILED" // transport or parse error, not a classifier "no"
)

// Request is the ephemeral submission for one capture. Never persisted.
type Request struct {
	QuestID   string
	CaptureID uuid.UUID
	Image     []byte
}

type Result struct {
	Verdict Verdict `json:"verdict"`
	Reason  string  `json:"reason,omitempty"`
}

// ParseAnswer applies the classifier contract: the free-text answer is
// affirmative iff it contains "yes", case-insensitive.
func ParseAnswer(answer string) Verdict {
	if strings.Contains(strings.ToLower(answer), "yes") {
		return VerdictAffirmed
	}
	return VerdictRejected
}

// DataURI encodes a captured image into a transport-safe representation
// for the classifier request.
func DataURI(image []byte) string {
	return fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(image))
}
