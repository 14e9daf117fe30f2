package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI runs the CLI with stdin and returns stdout, stderr and the exit code
func runCLI(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

const shopCatalogYAML = `name: shop
groups:
  - key: product
    label: Product
    contexts: [content]
    fields:
      - key: price
        type: number
modifiers:
  - key: round
    accepts: [number]
    output: number
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_NoArgsShowsHelp(t *testing.T) {
	stdout, _, code := runCLI(t, "")
	assert.Equal(t, ExitCodeSuccess, code)
	assert.Contains(t, stdout, CLIDescription)
}

func TestRun_UnknownCommand(t *testing.T) {
	_, stderr, code := runCLI(t, "", "nope")
	assert.Equal(t, ExitCodeUsageError, code)
	assert.Contains(t, stderr, "nope")
}

func TestRun_InvalidFormat(t *testing.T) {
	_, stderr, code := runCLI(t, "", "format", "--format", "xml", "-e", "x")
	assert.Equal(t, ExitCodeUsageError, code)
	assert.Contains(t, stderr, ErrMsgInvalidFormat)
}

func TestFormat(t *testing.T) {
	t.Run("inline value", func(t *testing.T) {
		stdout, _, code := runCLI(t, "", "format", "-e", "@tags()@post(title).truncate( 50 )@endtags()")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Equal(t, "@tags()@post(title).truncate(50)@endtags()\n", stdout)
	})

	t.Run("stdin", func(t *testing.T) {
		stdout, _, code := runCLI(t, "@tags()@post(featured_image).image_url(large)@endtags()\n", "format")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Equal(t, "@tags()@post(featured_image).image_url(\"large\")@endtags()\n", stdout)
	})

	t.Run("file", func(t *testing.T) {
		path := writeFile(t, "expr.txt", "plain text\n")
		stdout, _, code := runCLI(t, "", "format", path)
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Equal(t, "plain text\n", stdout)
	})

	t.Run("missing file", func(t *testing.T) {
		_, stderr, code := runCLI(t, "", "format", filepath.Join(t.TempDir(), "missing.txt"))
		assert.Equal(t, ExitCodeInputError, code)
		assert.Contains(t, stderr, ErrMsgReadInputFailed)
	})

	t.Run("file and value", func(t *testing.T) {
		_, _, code := runCLI(t, "", "format", "-e", "x", "file.txt")
		assert.Equal(t, ExitCodeUsageError, code)
	})
}

func TestParse(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		stdout, _, code := runCLI(t, "", "parse", "-e", "@tags()Hi @user(first_name)@endtags()")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Contains(t, stdout, `literal 1:8 "Hi "`)
		assert.Contains(t, stdout, "@user(first_name)")
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, code := runCLI(t, "", "parse", "-F", "json", "-e", "@tags()@post(title).upper()@endtags()")
		assert.Equal(t, ExitCodeSuccess, code)

		var out parseOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		assert.True(t, out.Active)
		require.Len(t, out.Segments, 1)
		assert.Equal(t, "token", out.Segments[0].Type)
		require.NotNil(t, out.Segments[0].Token)
		assert.Equal(t, "post", out.Segments[0].Token.Group)
		assert.Equal(t, "upper", out.Segments[0].Token.Modifiers[0].Key)
	})

	t.Run("resolved defaults", func(t *testing.T) {
		stdout, _, code := runCLI(t, "", "parse", "-F", "json", "-e", "@tags()@post(title).truncate(50)@endtags()")
		assert.Equal(t, ExitCodeSuccess, code)

		var out parseOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		require.Len(t, out.Segments, 1)
		assert.Equal(t, "@post(title).truncate(50)", out.Segments[0].Source)
		assert.Equal(t, `@post(title).truncate(50,"…")`, out.Segments[0].Resolved)

		stdout, _, code = runCLI(t, "", "parse", "-e", "@tags()@post(title).truncate(50)@endtags()")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Contains(t, stdout, `= @post(title).truncate(50,"…")`)
	})
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		stdout, _, code := runCLI(t, "", "validate", "--strict", "-e", "@tags()@post(title)@endtags()")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Contains(t, stdout, ValidationTextSuccess)
	})

	t.Run("advisory by default", func(t *testing.T) {
		stdout, _, code := runCLI(t, "", "validate", "-e", "@tags()@pots(title)@endtags()")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Contains(t, stdout, ValidationTextIssueHeader)
		assert.Contains(t, stdout, "Did you mean")
		assert.Contains(t, stdout, "'post'")
	})

	t.Run("strict", func(t *testing.T) {
		_, _, code := runCLI(t, "", "validate", "--strict", "-e", "@tags()@pots(title)@endtags()")
		assert.Equal(t, ExitCodeValidationError, code)
	})

	t.Run("context flag", func(t *testing.T) {
		stdout, _, code := runCLI(t, "", "validate", "-x", "site", "-F", "json", "-e", "@tags()@user(email)@endtags()")
		assert.Equal(t, ExitCodeSuccess, code)

		var out validationOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		assert.False(t, out.Valid)
		require.Len(t, out.Issues, 1)
		assert.Equal(t, "user", out.Issues[0].Subject)
	})

	t.Run("custom catalog", func(t *testing.T) {
		path := writeFile(t, "shop.yaml", shopCatalogYAML)
		stdout, _, code := runCLI(t, "", "validate", "--strict", "-c", path, "-e", "@tags()@product(price).round()@endtags()")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Contains(t, stdout, ValidationTextSuccess)
	})

	t.Run("bad catalog", func(t *testing.T) {
		path := writeFile(t, "shop.toml", "x")
		_, stderr, code := runCLI(t, "", "validate", "-c", path, "-e", "x")
		assert.Equal(t, ExitCodeInputError, code)
		assert.Contains(t, stderr, ErrMsgLoadCatalogFailed)
	})
}

func TestSuggest(t *testing.T) {
	t.Run("end of input", func(t *testing.T) {
		stdout, _, code := runCLI(t, "", "suggest", "-e", "@tags()@post(title).tr")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Contains(t, stdout, "Suggestions (modifiers):")
		assert.Contains(t, stdout, "truncate")
		assert.Contains(t, stdout, "trim")
		assert.NotContains(t, stdout, "upper")
	})

	t.Run("cursor", func(t *testing.T) {
		stdout, _, code := runCLI(t, "", "suggest", "--cursor", "8", "-e", "@tags()@post(title)@endtags()")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Contains(t, stdout, "Suggestions (groups):")
		assert.Contains(t, stdout, "site")
	})

	t.Run("argument choices", func(t *testing.T) {
		stdout, _, code := runCLI(t, "", "suggest", "-e", "@tags()@post(featured_image).image_url(")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Contains(t, stdout, "size (enum): thumbnail, medium, large, full")
	})

	t.Run("cursor out of range", func(t *testing.T) {
		_, _, code := runCLI(t, "", "suggest", "--cursor", "99", "-e", "abc")
		assert.Equal(t, ExitCodeUsageError, code)
	})
}

func TestWrapUnwrap(t *testing.T) {
	stdout, _, code := runCLI(t, "", "wrap", "-e", "@post(title)")
	assert.Equal(t, ExitCodeSuccess, code)
	assert.Equal(t, "@tags()@post(title)@endtags()\n", stdout)

	stdout, _, code = runCLI(t, "", "unwrap", "-e", "@tags()@post(title)@endtags()")
	assert.Equal(t, ExitCodeSuccess, code)
	assert.Equal(t, "@post(title)\n", stdout)
}

func TestCatalogCommands(t *testing.T) {
	t.Run("show", func(t *testing.T) {
		stdout, _, code := runCLI(t, "", "catalog", "show")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Contains(t, stdout, "key: post")
	})

	t.Run("reference", func(t *testing.T) {
		stdout, _, code := runCLI(t, "", "catalog", "reference")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Contains(t, stdout, "`@post(title)`")

		stdout, _, code = runCLI(t, "", "catalog", "reference", "--html")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Contains(t, stdout, "<table>")
	})

	t.Run("save get list", func(t *testing.T) {
		catalogPath := writeFile(t, "shop.yaml", shopCatalogYAML)
		db := filepath.Join(t.TempDir(), "catalogs.db")

		for i := 0; i < 2; i++ {
			stdout, stderr, code := runCLI(t, "", "catalog", "save", "-c", catalogPath, "--driver", "sqlite", "--dsn", db, "--author", "ci")
			require.Equal(t, ExitCodeSuccess, code, stderr)
			assert.Contains(t, stdout, "saved shop v")
		}

		stdout, _, code := runCLI(t, "", "catalog", "list", "--driver", "sqlite", "--dsn", db)
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Equal(t, "shop\t[2 1]\n", stdout)

		stdout, _, code = runCLI(t, "", "catalog", "get", "--driver", "sqlite", "--dsn", db, "-n", "shop", "--version", "1")
		assert.Equal(t, ExitCodeSuccess, code)
		assert.Contains(t, stdout, "key: product")

		_, _, code = runCLI(t, "", "catalog", "get", "--driver", "sqlite", "--dsn", db, "-n", "missing")
		assert.Equal(t, ExitCodeInputError, code)
	})

	t.Run("filesystem storage", func(t *testing.T) {
		root := t.TempDir()
		_, stderr, code := runCLI(t, "", "catalog", "save", "--dsn", root)
		require.Equal(t, ExitCodeSuccess, code, stderr)
		assert.FileExists(t, filepath.Join(root, "default", "v1.yaml"))
	})

	t.Run("missing dsn", func(t *testing.T) {
		_, stderr, code := runCLI(t, "", "catalog", "list")
		assert.Equal(t, ExitCodeUsageError, code)
		assert.Contains(t, stderr, ErrMsgMissingDSN)
	})
}

func TestVersion(t *testing.T) {
	stdout, _, code := runCLI(t, "", "version")
	assert.Equal(t, ExitCodeSuccess, code)
	assert.Contains(t, stdout, "go-dyntag version")

	stdout, _, code = runCLI(t, "", "version", "-F", "json")
	assert.Equal(t, ExitCodeSuccess, code)
	var v versionOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &v))
	assert.NotEmpty(t, v.GoVersion)
}

func TestVerboseLogsToStderr(t *testing.T) {
	stdout, stderr, code := runCLI(t, "", "format", "-v", "-e", "@tags()@post(title)@endtags()")
	assert.Equal(t, ExitCodeSuccess, code)
	assert.Equal(t, "@tags()@post(title)@endtags()\n", stdout)
	assert.Contains(t, stderr, "engine created")
	assert.Contains(t, stderr, "parse complete")
}
