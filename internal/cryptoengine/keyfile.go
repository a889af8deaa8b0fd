package cryptoengine

import (
	"encoding/json"
	"io"
)

// KeyFile is the persisted, password-wrapped record of a vault's master
// keys. Byte fields are base64-encoded by encoding/json's default []byte
// handling. Unknown fields are ignored by json.Unmarshal and never alter
// interpretation of the known ones.
type KeyFile struct {
	Version          int    `json:"version"`
	ScryptSalt       []byte `json:"scryptSalt"`
	ScryptCostParam  int    `json:"scryptCostParam"`
	ScryptBlockSize  int    `json:"scryptBlockSize"`
	KeyLength        int    `json:"keyLength"`
	PrimaryMasterKey []byte `json:"primaryMasterKey"`
	HMACMasterKey    []byte `json:"hMacMasterKey"`
}

// WriteTo marshals the key file as JSON to w.
func (kf *KeyFile) WriteTo(w io.Writer) error {
	return json.NewEncoder(w).Encode(kf)
}

// ReadKeyFile parses a key file from r.
func ReadKeyFile(r io.Reader) (*KeyFile, error) {
	var kf KeyFile
	if err := json.NewDecoder(r).Decode(&kf); err != nil {
		return nil, &IllegalStateError{Reason: "malformed key file: " + err.Error()}
	}
	return &kf, nil
}
