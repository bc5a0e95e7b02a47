package prompts

import (
	"encoding/json"
	"fmt"
)

// Stage names the assistant call a prompt override targets.
type Stage string

const (
	StageAnalyze Stage = "analyze"
	StageChat    Stage = "chat"
)

// Stages returns the stages that accept overrides, in pipeline order.
func Stages() []Stage {
	return []Stage{StageAnalyze, StageChat}
}

// ParseStage rejects anything but analyze and chat with ErrInvalidStage.
func ParseStage(s string) (Stage, error) {
	switch st := Stage(s); st {
	case StageAnalyze, StageChat:
		return st, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidStage, s)
}

func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := ParseStage(raw)
	*s = st
	return err
}
