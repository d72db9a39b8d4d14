package password

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareHash(t *testing.T) {
	correctHash, err := GetHash("correct_password")
	require.NoError(t, err)
	anotherHash, err := GetHash("another_password")
	require.NoError(t, err)

	tests := []struct {
		name         string
		hash         string
		password     string
		wantMismatch bool
		wantErr      bool
	}{
		{name: "совпадает", hash: correctHash, password: "correct_password"},
		{name: "неверный пароль", hash: correctHash, password: "wrong_password", wantMismatch: true, wantErr: true},
		{name: "чужой хеш", hash: anotherHash, password: "correct_password", wantMismatch: true, wantErr: true},
		{name: "пустой пароль", hash: correctHash, password: "", wantMismatch: true, wantErr: true},
		{name: "пустой хеш", hash: "", password: "correct_password", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CompareHash(tt.hash, tt.password)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMismatch, errors.Is(err, ErrMismatch))
		})
	}
}

func TestGetHash_Salted(t *testing.T) {
	h1, err := GetHash("same")
	require.NoError(t, err)
	h2, err := GetHash("same")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.NoError(t, CompareHash(h1, "same"))
	assert.NoError(t, CompareHash(h2, "same"))
}
