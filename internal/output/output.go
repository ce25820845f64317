package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

type Mode string

const (
	ModeHuman Mode = "human"
	ModePlain Mode = "plain"
	ModeJSON  Mode = "json"
)

type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Count     int    `json:"count,omitempty"`
}

type Envelope struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

func DetectMode(jsonFlag, plainFlag bool, stdoutIsTTY bool) (Mode, error) {
	if jsonFlag && plainFlag {
		return "", fmt.Errorf("--json and --plain are mutually exclusive")
	}
	if jsonFlag {
		return ModeJSON, nil
	}
	if plainFlag || !stdoutIsTTY {
		return ModePlain, nil
	}
	return ModeHuman, nil
}

func IsTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func WriteJSON(out io.Writer, data any, meta Meta) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(Envelope{Data: data, Meta: meta})
}

func WritePlain(out io.Writer, rows [][]string) error {
	for _, row := range rows {
		if _, err := fmt.Fprintln(out, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// WriteText emits a pre-formatted multi-line block unchanged, for the
// plan preview and execution report.
func WriteText(out io.Writer, text string) error {
	_, err := fmt.Fprintln(out, text)
	return err
}
