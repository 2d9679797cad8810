// Package preference defines the vocabulary shared by the preference store,
// the resolver and the access grant registry.
//
// # Levels
//
// A preference or grant is anchored at one of three levels, ordered by
// specificity:
//
//	GATEWAY < GROUP < USER
//
// Ordinary values flow bottom-up (USER beats GROUP beats GATEWAY). Enforced
// values flow top-down: an enforced GATEWAY value cannot be overridden by a
// GROUP or USER value, and an enforced GROUP value cannot be overridden by a
// USER value.
//
// # Keys
//
// Each resource type has a closed set of known keys ([ComputeKeys] and
// [StorageKeys]). The REST boundary validates keys against these sets; the
// store itself accepts any string key.
package preference
