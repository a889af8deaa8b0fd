// Package cryptoengine implements the cryptographic core of a client-side
// encrypted vault: password-based master-key wrapping, deterministic
// filename encryption, and the authenticated chunked file-content format.
//
// A Cryptor holds a pair of master keys (primary AES key, HMAC key) and
// exposes the operations that need them. It moves through the states
// Fresh -> Loaded -> Destroyed; see Cryptor for details.
package cryptoengine
