package gateways

import "context"

// SignatureGateway signs and verifies the recipe file with a detached signature
type SignatureGateway interface {
	// SignFile writes a detached signature for filePath to sigPath
	SignFile(ctx context.Context, filePath, sigPath string) error

	// VerifyFile checks the detached signature at sigPath against filePath
	VerifyFile(ctx context.Context, filePath, sigPath string) error

	// VerifyData checks the detached signature at sigPath against data
	VerifyData(ctx context.Context, data []byte, sigPath string) error

	// CanSign reports whether a private key is available
	CanSign() bool

	// CanVerify reports whether at least one public key is available
	CanVerify() bool
}
