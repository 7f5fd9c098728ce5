package verification_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/task-tracker/internal/lib/verification"
)

func TestSignAndVerify(t *testing.T) {
	signer := verification.NewSigner("test-secret")

	mac := signer.Sign("user-uid", "test@example.com")
	assert.NotEmpty(t, mac)

	assert.True(t, signer.Verify("user-uid", "test@example.com", mac))
	assert.False(t, signer.Verify("other-uid", "test@example.com", mac))
	assert.False(t, signer.Verify("user-uid", "other@example.com", mac))
	assert.False(t, signer.Verify("user-uid", "test@example.com", "deadbeef"))
}

func TestVerify_DifferentSecret(t *testing.T) {
	mac := verification.NewSigner("secret-one").Sign("user-uid", "test@example.com")
	other := verification.NewSigner("secret-two")
	assert.False(t, other.Verify("user-uid", "test@example.com", mac))
}

func TestLink(t *testing.T) {
	signer := verification.NewSigner("test-secret")
	link := signer.Link("http://localhost:8080", "user-uid", "test@example.com")

	mac := signer.Sign("user-uid", "test@example.com")
	assert.Equal(t, fmt.Sprintf("http://localhost:8080/api/v1/email/verify/user-uid/%s", mac), link)
}
