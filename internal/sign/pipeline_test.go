package sign

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harwoodcs/lacquer/internal/metrics"
)

type call struct {
	exe  string
	args []string
}

// fakeRunner records invocations and fails on a chosen call index.
type fakeRunner struct {
	calls  []call
	failAt int // 1-based call number to fail on; 0 never fails
}

func (f *fakeRunner) Run(ctx context.Context, exe string, args []string) error {
	f.calls = append(f.calls, call{exe: exe, args: args})
	if f.failAt > 0 && len(f.calls) == f.failAt {
		return errors.New("exit status 1")
	}
	return nil
}

func TestPipeline_StageOrdering(t *testing.T) {
	metrics.Reset()

	runner := &fakeRunner{}
	p := &Pipeline{
		Tool: "/tools/rcodesign",
		Opts: Options{
			Sign:                      true,
			Notarize:                  true,
			Staple:                    true,
			P12File:                   "/secrets/cert.p12",
			AppStoreConnectAPIKeyFile: "/secrets/asc.json",
		},
		Runner: runner,
		Log:    zerolog.Nop(),
	}

	files := []string{"/dist/a.dmg", "/dist/b.pkg"}
	require.NoError(t, p.Run(context.Background(), files))

	// All files signed before any is notarized, all notarized before
	// any is stapled.
	require.Len(t, runner.calls, 6)
	assert.Equal(t, "sign", runner.calls[0].args[0])
	assert.Equal(t, "sign", runner.calls[1].args[0])
	assert.Equal(t, "notary-submit", runner.calls[2].args[0])
	assert.Equal(t, "notary-submit", runner.calls[3].args[0])
	assert.Equal(t, "staple", runner.calls[4].args[0])
	assert.Equal(t, "staple", runner.calls[5].args[0])

	// File order within each stage is the resolver order.
	assert.Equal(t, "/dist/a.dmg", runner.calls[0].args[len(runner.calls[0].args)-1])
	assert.Equal(t, "/dist/b.pkg", runner.calls[1].args[len(runner.calls[1].args)-1])

	m := metrics.Get()
	assert.Equal(t, uint64(2), m.FilesSigned)
	assert.Equal(t, uint64(2), m.FilesNotarized)
	assert.Equal(t, uint64(2), m.FilesStapled)
}

func TestPipeline_AbortsOnFailure(t *testing.T) {
	metrics.Reset()

	runner := &fakeRunner{failAt: 2}
	p := &Pipeline{
		Tool:   "/tools/rcodesign",
		Opts:   Options{Sign: true, Staple: true, P12File: "/secrets/cert.p12"},
		Runner: runner,
		Log:    zerolog.Nop(),
	}

	err := p.Run(context.Background(), []string{"/dist/a.dmg", "/dist/b.pkg", "/dist/c.app"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "signing /dist/b.pkg")

	// The failing call is the last one: nothing after it runs, and the
	// already-signed first file is not revisited.
	assert.Len(t, runner.calls, 2)
	assert.Equal(t, uint64(1), metrics.Get().FilesSigned)
	assert.Equal(t, uint64(0), metrics.Get().FilesStapled)
}

func TestPipeline_SkipsDisabledStages(t *testing.T) {
	runner := &fakeRunner{}
	p := &Pipeline{
		Tool:   "/tools/rcodesign",
		Opts:   Options{Staple: true},
		Runner: runner,
		Log:    zerolog.Nop(),
	}

	require.NoError(t, p.Run(context.Background(), []string{"/dist/a.dmg"}))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"staple", "/dist/a.dmg"}, runner.calls[0].args)
}

func TestSignArgs(t *testing.T) {
	o := Options{
		SignConfigFile:  "/cfg/rcodesign.toml",
		P12File:         "/secrets/cert.p12",
		P12PasswordFile: "/secrets/pass.txt",
		PEMSources:      []string{"/secrets/a.pem", "/secrets/b.pem"},
	}

	args := SignArgs(o, "/dist/a.dmg")
	assert.Equal(t, []string{
		"sign",
		"--config-file", "/cfg/rcodesign.toml",
		"--p12-file", "/secrets/cert.p12",
		"--p12-password-file", "/secrets/pass.txt",
		"--pem-source", "/secrets/a.pem",
		"--pem-source", "/secrets/b.pem",
		"/dist/a.dmg",
	}, args)
}

func TestSignArgs_RemoteSigning(t *testing.T) {
	o := Options{RemoteSignPublicKey: "BASE64KEY"}

	args := SignArgs(o, "/dist/a.dmg")
	assert.Equal(t, []string{
		"sign",
		"--remote-signer", "--remote-public-key", "BASE64KEY",
		"/dist/a.dmg",
	}, args)
}

func TestNotarizeArgs(t *testing.T) {
	o := Options{AppStoreConnectAPIKeyFile: "/secrets/asc.json"}

	args := NotarizeArgs(o, "/dist/a.dmg")
	assert.Equal(t, []string{
		"notary-submit", "--api-key-file", "/secrets/asc.json", "--wait", "/dist/a.dmg",
	}, args)
}
