package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTenantStatusHint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "flux get ks --namespace foo", tenantStatusHint("foo"))
}
