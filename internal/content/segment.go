// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the variant of a Segment.
type Kind int

const (
	// Text is a run of prose, rendered with its whitespace preserved.
	Text Kind = iota
	// Code is a closed fenced code block.
	Code
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Code:
		return "code"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalJSON encodes the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "text":
		*k = Text
	case "code":
		*k = Code
	default:
		return fmt.Errorf("unknown segment kind %q", name)
	}
	return nil
}

// Segment is one unit of parsed output.
//
// Text segments use Content. Code segments use Language, Code and Tag.
// Start and End are byte offsets into the parsed input; End is exclusive.
type Segment struct {
	Kind Kind `json:"kind"`

	Content string `json:"content,omitempty"`

	Language string `json:"language,omitempty"`
	Code     string `json:"code,omitempty"`
	// Tag is the fence tag exactly as written, empty when the language was inferred.
	Tag string `json:"tag,omitempty"`

	Start int `json:"start"`
	End   int `json:"end"`
}

// TextSegment builds a text segment with no source span.
func TextSegment(content string) Segment {
	return Segment{Kind: Text, Content: content}
}

// CodeSegment builds a code segment with no source span.
func CodeSegment(language, code string) Segment {
	return Segment{Kind: Code, Language: language, Code: code}
}

// IsCode reports whether the segment is a fenced code block.
func (s Segment) IsCode() bool {
	return s.Kind == Code
}

// Body returns the rendered payload of the segment: Content for text, Code for code.
func (s Segment) Body() string {
	if s.Kind == Code {
		return s.Code
	}
	return s.Content
}

// Len returns the number of source bytes the segment covers.
func (s Segment) Len() int {
	return s.End - s.Start
}
