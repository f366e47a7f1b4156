// Package vault seals local data with the password-bound vault key.
//
// The key itself comes from crypto.DeriveEncryptionKey; this package only
// frames ciphertext in a versioned JSON envelope. Because the key is
// re-derivable from (private key, password), the envelope stores no salt or
// KDF parameters.
package vault
