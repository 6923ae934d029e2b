package sign

// Options carries the credential parameters forwarded verbatim to the
// external tool's command line.
type Options struct {
	Sign     bool
	Notarize bool
	Staple   bool

	SignConfigFile             string
	P12File                    string
	P12Password                string
	P12PasswordFile            string
	PEMSources                 []string
	RemoteSignPublicKey        string
	RemoteSignPublicKeyPEMFile string

	AppStoreConnectAPIKeyFile string
}

// SignArgs builds the argument list for signing one file in place.
func SignArgs(o Options, path string) []string {
	args := []string{"sign"}
	if o.SignConfigFile != "" {
		args = append(args, "--config-file", o.SignConfigFile)
	}
	if o.P12File != "" {
		args = append(args, "--p12-file", o.P12File)
	}
	if o.P12Password != "" {
		args = append(args, "--p12-password", o.P12Password)
	}
	if o.P12PasswordFile != "" {
		args = append(args, "--p12-password-file", o.P12PasswordFile)
	}
	for _, pem := range o.PEMSources {
		args = append(args, "--pem-source", pem)
	}
	if o.RemoteSignPublicKey != "" {
		args = append(args, "--remote-signer", "--remote-public-key", o.RemoteSignPublicKey)
	}
	if o.RemoteSignPublicKeyPEMFile != "" {
		args = append(args, "--remote-signer", "--remote-public-key-pem-file", o.RemoteSignPublicKeyPEMFile)
	}
	return append(args, path)
}

// NotarizeArgs builds the argument list for submitting one file for
// notarization and waiting for the outcome.
func NotarizeArgs(o Options, path string) []string {
	return []string{"notary-submit", "--api-key-file", o.AppStoreConnectAPIKeyFile, "--wait", path}
}

// StapleArgs builds the argument list for stapling one file.
func StapleArgs(path string) []string {
	return []string{"staple", path}
}
