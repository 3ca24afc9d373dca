package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisplayTitle(t *testing.T) {
	tests := []struct {
		name string
		img  Image
		want string
	}{
		{
			name: "alt description preferred",
			img:  Image{AltDescription: "a cat on a roof", Description: "ignored"},
			want: "A cat on a roof",
		},
		{
			name: "falls back to description",
			img:  Image{Description: "golden hour"},
			want: "Golden hour",
		},
		{
			name: "placeholder when both empty",
			img:  Image{},
			want: "Untitled Image",
		},
		{
			name: "already capitalized stays put",
			img:  Image{AltDescription: "Berlin at night"},
			want: "Berlin at night",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.img.DisplayTitle())
		})
	}
}

func TestCreatedDate(t *testing.T) {
	img := Image{CreatedAt: "2024-03-15T10:30:00Z"}
	assert.Equal(t, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), img.CreatedDate())

	assert.True(t, Image{CreatedAt: "not a date"}.CreatedDate().IsZero())
	assert.True(t, Image{}.CreatedDate().IsZero())
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "cat", NormalizeQuery("  cat \n"))
	assert.Equal(t, "", NormalizeQuery(" \t "))
	assert.Equal(t, "two words", NormalizeQuery("two words"))
}
