package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrUnknownTargetKind is returned when a target kind cannot be parsed
var ErrUnknownTargetKind = errors.New("unknown target kind")

// TargetKind identifies what a comment is attached to.
// The three root-object kinds anchor a thread; TargetKindComment means "reply to a comment".
type TargetKind string

const (
	TargetKindBlogPost      TargetKind = "blog_post"
	TargetKindUserPage      TargetKind = "user_page"
	TargetKindAnotherObject TargetKind = "another_object"
	TargetKindComment       TargetKind = "comment"
)

// legacy single-character codes still sent by older clients
var legacyKindCodes = map[string]TargetKind{
	"0": TargetKindBlogPost,
	"1": TargetKindUserPage,
	"2": TargetKindAnotherObject,
	"c": TargetKindComment,
}

// ParseTargetKind accepts a canonical kind name or a legacy code
func ParseTargetKind(s string) (TargetKind, error) {
	s = strings.TrimSpace(s)
	if k, ok := legacyKindCodes[s]; ok {
		return k, nil
	}
	switch k := TargetKind(strings.ToLower(s)); k {
	case TargetKindBlogPost, TargetKindUserPage, TargetKindAnotherObject, TargetKindComment:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTargetKind, s)
}

// IsRootObject reports whether the kind names a root object rather than a comment
func (k TargetKind) IsRootObject() bool {
	switch k {
	case TargetKindBlogPost, TargetKindUserPage, TargetKindAnotherObject:
		return true
	}
	return false
}

// DisplayName returns the human readable kind used in tree output
func (k TargetKind) DisplayName() string {
	switch k {
	case TargetKindBlogPost:
		return "BlogPost"
	case TargetKindUserPage:
		return "UserPage"
	case TargetKindAnotherObject:
		return "AnotherObject"
	case TargetKindComment:
		return "Comment"
	}
	return string(k)
}

// TargetRef is the tagged (kind, id) reference a comment operation addresses
type TargetRef struct {
	Kind TargetKind
	ID   uuid.UUID
}

// NewTargetRef parses a kind string and id string into a TargetRef
func NewTargetRef(kind, id string) (TargetRef, error) {
	k, err := ParseTargetKind(kind)
	if err != nil {
		return TargetRef{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return TargetRef{}, fmt.Errorf("invalid target id %q: %w", id, err)
	}
	return TargetRef{Kind: k, ID: parsed}, nil
}

func (r TargetRef) String() string {
	return string(r.Kind) + ":" + r.ID.String()
}
