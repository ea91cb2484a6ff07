package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptSecrets(t *testing.T) {
	dir := t.TempDir()
	secrets := map[string]string{
		EnvNotionAPIKey:    "secret_abc",
		EnvAnthropicAPIKey: "sk-ant-xyz",
	}

	require.NoError(t, EncryptSecretsFile(dir, "correct horse", secrets))
	assert.True(t, SecretsFileExists(dir))

	info, err := os.Stat(SecretsPath(dir))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := DecryptSecretsFile(dir, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, secrets, got)

	_, err = DecryptSecretsFile(dir, "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong password")
}

func TestDecryptFixesPermissions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, EncryptSecretsFile(dir, "pw", map[string]string{"A": "1"}))
	require.NoError(t, os.Chmod(SecretsPath(dir), 0644))

	_, err := DecryptSecretsFile(dir, "pw")
	require.NoError(t, err)

	info, err := os.Stat(SecretsPath(dir))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestDecryptCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, EncryptSecretsFile(dir, "pw", map[string]string{}))
	require.NoError(t, os.WriteFile(SecretsPath(dir), []byte("short"), 0600))

	_, err := DecryptSecretsFile(dir, "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too small")
}

func TestUnlockSecrets(t *testing.T) {
	t.Cleanup(func() { SetDecryptedSecrets(nil) })

	t.Run("no file", func(t *testing.T) {
		ok, err := UnlockSecrets(t.TempDir())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("password from env", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, EncryptSecretsFile(dir, "pw", map[string]string{"NOTION_API_KEY": "from-file"}))
		t.Setenv(EnvPassword, "pw")
		t.Setenv(EnvNotionAPIKey, "")

		ok, err := UnlockSecrets(dir)
		require.NoError(t, err)
		assert.True(t, ok)

		value, err := GetSecret(EnvNotionAPIKey)
		require.NoError(t, err)
		assert.Equal(t, "from-file", value)
		assert.Equal(t, []string{EnvNotionAPIKey}, GetDecryptedSecretNames())
	})
}

func TestGetSecretFallsBackToEnv(t *testing.T) {
	SetDecryptedSecrets(map[string]string{"OTHER": "x"})
	t.Cleanup(func() { SetDecryptedSecrets(nil) })
	t.Setenv("AEOS_TEST_SECRET", "env-value")

	value, err := GetSecret("AEOS_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "env-value", value)

	t.Setenv("AEOS_TEST_SECRET", "")
	_, err = GetSecret("AEOS_TEST_SECRET")
	assert.Error(t, err)
}
