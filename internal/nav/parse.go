package nav

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidChoice means the input matched no menu item or action. The
// caller re-prompts; nothing else happens.
var ErrInvalidChoice = errors.New("invalid choice")

// ChoiceKind classifies a browser menu input.
type ChoiceKind int

const (
	ChoiceItem     ChoiceKind = iota // numbered folder or file
	ChoiceBack                       // 0
	ChoiceClear                      // c
	ChoiceDownload                   // d
)

// Choice is one parsed browser input.
type Choice struct {
	Kind ChoiceKind
	N    int // 1-based item number, set for ChoiceItem
}

// ParseChoice reads browser menu input: an item number within 1..n, 0 for
// back, c to clear history, d to download the current folder.
func ParseChoice(input string, n int) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "0":
		return Choice{Kind: ChoiceBack}, nil
	case "c":
		return Choice{Kind: ChoiceClear}, nil
	case "d":
		return Choice{Kind: ChoiceDownload}, nil
	}

	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || v < 1 || v > n {
		return Choice{}, fmt.Errorf("%w: %q", ErrInvalidChoice, input)
	}
	return Choice{Kind: ChoiceItem, N: v}, nil
}

// ParseSelection reads search-results input: an item number within 1..n, or
// 0 to search again. Returns 0 for the latter.
func ParseSelection(input string, n int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || v < 0 || v > n {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, input)
	}
	return v, nil
}

// Action is a per-file action.
type Action int

const (
	ActionPlay Action = iota
	ActionComplete
	ActionDownload
	ActionCancel
)

// ParseAction reads the file action prompt: p play, c mark completed, d
// download, b back.
func ParseAction(input string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "p":
		return ActionPlay, nil
	case "c":
		return ActionComplete, nil
	case "d":
		return ActionDownload, nil
	case "b":
		return ActionCancel, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, input)
}
