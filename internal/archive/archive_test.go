package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	at := time.Date(2026, 10, 17, 23, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		want string
	}{
		{"notes.pdf", "uploads/2026/10/17/id-notes.pdf"},
		{"../../etc/passwd", "uploads/2026/10/17/id-passwd"},
		{`C:\Users\me\Quiz 1.pdf`, "uploads/2026/10/17/id-Quiz_1.pdf"},
		{"", "uploads/2026/10/17/id-document"},
		{"???", "uploads/2026/10/17/id-document"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, objectKey(at, "id", tt.name), tt.name)
	}
}

func TestNewS3ArchiveDoesNotDial(t *testing.T) {
	a, err := NewS3Archive(S3Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "uploads"})
	require.NoError(t, err)
	assert.Equal(t, "uploads", a.bucket)
}

func TestNop(t *testing.T) {
	key, err := Nop{}.Put(context.Background(), "a.pdf", "application/pdf", []byte("x"))
	assert.NoError(t, err)
	assert.Empty(t, key)
}
