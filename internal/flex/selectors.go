// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package flex

import (
	"fmt"
	"strings"
)

type SelectorType string

const (
	SelectorTag    SelectorType = "tag"
	SelectorBranch SelectorType = "branch"
	SelectorCommit SelectorType = "commit"
)

// Selector names an explicit upstream revision, overriding NextAfter.
// A bare value without a type prefix is treated as a commit id.
type Selector struct {
	Raw   string
	Type  SelectorType
	Value string
}

func ParseSelector(raw string) (Selector, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Selector{}, fmt.Errorf("%w: empty", ErrInvalidSelector)
	}

	sel := Selector{Raw: trimmed, Type: SelectorCommit, Value: trimmed}
	if colon := strings.IndexByte(trimmed, ':'); colon >= 0 {
		if colon == 0 {
			return Selector{}, fmt.Errorf("%w: missing type in %q", ErrInvalidSelector, trimmed)
		}
		sel.Type = SelectorType(strings.ToLower(trimmed[:colon]))
		sel.Value = strings.TrimSpace(trimmed[colon+1:])
	}

	if sel.Value == "" {
		return Selector{}, fmt.Errorf("%w: empty %s value", ErrInvalidSelector, sel.Type)
	}

	switch sel.Type {
	case SelectorTag, SelectorBranch:
	case SelectorCommit:
		if !hexPrefix.MatchString(sel.Value) {
			return Selector{}, fmt.Errorf("%w: %q is not a commit id", ErrInvalidSelector, sel.Value)
		}
	default:
		return Selector{}, fmt.Errorf("%w: unsupported type %q", ErrInvalidSelector, sel.Type)
	}

	return sel, nil
}
