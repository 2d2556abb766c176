package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/taskhistory/internal/core/domain"
)

type compilerOptions struct {
	Debug bool `json:"debug"`
}

func TestTypeRegistry(t *testing.T) {
	t.Parallel()

	r := domain.NewTypeRegistry()
	require.NoError(t, domain.RegisterType[compilerOptions](r, "compiler.options"))

	v, err := r.New("compiler.options")
	require.NoError(t, err)
	assert.IsType(t, &compilerOptions{}, v)

	_, err = r.New("unknown")
	assert.ErrorContains(t, err, domain.ErrUnresolvedType.Error())

	err = domain.RegisterType[compilerOptions](r, "compiler.options")
	assert.ErrorContains(t, err, domain.ErrDuplicateType.Error())
}

func TestMustRegisterType_PanicsOnDuplicate(t *testing.T) {
	t.Parallel()

	types := domain.NewTypeRegistry()
	assert.NotPanics(t, func() { domain.MustRegisterType[compilerOptions](types, "compiler") })
	assert.Panics(t, func() { domain.MustRegisterType[compilerOptions](types, "compiler") })

	v, err := types.New("compiler")
	require.NoError(t, err)
	assert.IsType(t, &compilerOptions{}, v)
}

func TestTypeRegistry_NilResolvesNothing(t *testing.T) {
	t.Parallel()

	var r *domain.TypeRegistry
	_, err := r.New("anything")
	assert.ErrorContains(t, err, domain.ErrUnresolvedType.Error())
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	a := domain.Fingerprint{"k": "v"}
	assert.True(t, a.Equal(domain.Fingerprint{"k": "v"}))
	assert.False(t, a.Equal(domain.Fingerprint{"k": "w"}))
	assert.False(t, a.Equal(domain.Fingerprint{"k": "v", "x": ""}))
	assert.True(t, domain.Fingerprint(nil).Equal(domain.Fingerprint{}))

	merged := domain.DefaultFingerprint().Merge(map[string]string{"tool": "1"})
	assert.Equal(t, domain.Fingerprint{domain.FingerprintVersionKey: domain.CacheFormatVersion, "tool": "1"}, merged)
}

func TestParseUsageMode(t *testing.T) {
	t.Parallel()

	m, err := domain.ParseUsageMode("")
	require.NoError(t, err)
	assert.Equal(t, domain.UsageNormal, m)

	m, err = domain.ParseUsageMode("force-rebuild")
	require.NoError(t, err)
	assert.Equal(t, domain.UsageForceRebuild, m)
	assert.Equal(t, "force-rebuild", m.String())

	_, err = domain.ParseUsageMode("sometimes")
	assert.ErrorContains(t, err, domain.ErrInvalidUsageMode.Error())
}
