package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargetKind(t *testing.T) {
	tests := []struct {
		in      string
		want    TargetKind
		wantErr bool
	}{
		{"blog_post", TargetKindBlogPost, false},
		{"USER_PAGE", TargetKindUserPage, false},
		{" another_object ", TargetKindAnotherObject, false},
		{"comment", TargetKindComment, false},
		{"0", TargetKindBlogPost, false},
		{"1", TargetKindUserPage, false},
		{"2", TargetKindAnotherObject, false},
		{"c", TargetKindComment, false},
		{"3", "", true},
		{"", "", true},
		{"post", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTargetKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownTargetKind))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTargetKind_IsRootObject(t *testing.T) {
	assert.True(t, TargetKindBlogPost.IsRootObject())
	assert.True(t, TargetKindUserPage.IsRootObject())
	assert.True(t, TargetKindAnotherObject.IsRootObject())
	assert.False(t, TargetKindComment.IsRootObject())
	assert.False(t, TargetKind("nope").IsRootObject())
}

func TestRootObjectTable(t *testing.T) {
	table, ok := RootObjectTable(TargetKindUserPage)
	assert.True(t, ok)
	assert.Equal(t, "user_pages", table)

	_, ok = RootObjectTable(TargetKindComment)
	assert.False(t, ok)
}

func TestNewTargetRef(t *testing.T) {
	id := uuid.New()

	ref, err := NewTargetRef("c", id.String())
	require.NoError(t, err)
	assert.Equal(t, TargetRef{Kind: TargetKindComment, ID: id}, ref)
	assert.Equal(t, "comment:"+id.String(), ref.String())

	_, err = NewTargetRef("blog_post", "not-a-uuid")
	assert.Error(t, err)

	_, err = NewTargetRef("x", id.String())
	assert.ErrorIs(t, err, ErrUnknownTargetKind)
}

func TestHistoryEntry_Shapes(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	author := uuid.New()
	c := &Comment{ID: uuid.New(), AuthorID: author, Text: "first", CreatedAt: now, LastModifiedAt: now}

	created := NewCreationEntry(c)
	assert.Equal(t, ChangeCreation, created.Type())
	assert.Nil(t, created.OldText)
	assert.Equal(t, "first", *created.NewText)
	assert.Equal(t, c.ID, *created.CommentID)
	assert.Equal(t, now, created.Timestamp)

	c.Text = "second"
	c.LastModifiedAt = now.Add(time.Minute)
	edited := NewEditionEntry(c, author, "first")
	assert.Equal(t, ChangeEdition, edited.Type())
	assert.Equal(t, "first", *edited.OldText)
	assert.Equal(t, "second", *edited.NewText)
	assert.Equal(t, c.LastModifiedAt, edited.Timestamp)

	deletedAt := now.Add(time.Hour)
	deleted := NewDeletionEntry(c, author, deletedAt)
	assert.Equal(t, ChangeDeletion, deleted.Type())
	assert.Nil(t, deleted.CommentID)
	assert.Nil(t, deleted.NewText)
	assert.Equal(t, "second", *deleted.OldText)
	assert.Equal(t, deletedAt, deleted.Timestamp)

	// the entry must not alias the comment's text
	c.Text = "mutated"
	assert.Equal(t, "second", *edited.NewText)
}

func TestBeforeCreate_AssignsIDOnce(t *testing.T) {
	c := &Comment{}
	require.NoError(t, c.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, c.ID)

	first := c.ID
	require.NoError(t, c.BeforeCreate(nil))
	assert.Equal(t, first, c.ID)
}

func TestComment_IsTopLevel(t *testing.T) {
	parent := uuid.New()
	assert.True(t, (&Comment{}).IsTopLevel())
	assert.False(t, (&Comment{ParentID: &parent}).IsTopLevel())
}
