// Package secretbox seals credential secrets at rest.
//
// Secrets are encrypted with XChaCha20-Poly1305 under the gateway data key
// (GATEWAY_DATA_KEY, 32 bytes, base64). The credential token is passed as
// additional authenticated data so a sealed secret cannot be moved between
// rows.
//
//	box, err := secretbox.NewSymmetric(key)
//	sealed, err := box.Encrypt([]byte(token), secret)
//	plain, err := box.Decrypt([]byte(token), sealed)
package secretbox
