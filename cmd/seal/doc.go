// seal encrypts a file and splits the key into shares using Shamir's Secret
// Sharing over a prime field, or splits a secret directly.
//
// Usage:
//
//	seal lock -i <input> -o <output> -s <shares> -t <threshold> -n <share count>
//	seal unlock -i <input> -o <output> -s <shares>
//	seal split -i <secret> -s <shares> -t <threshold> -n <share count>
//	seal combine -s <shares> -o <secret>
//	seal fields
//
// The <input> and <output> files are optional and, if omitted (or set to '-'),
// default to stdin and stdout respectively. The <shares> file is always
// required. It holds one share record per line: a JSON document carrying the
// share set id, threshold, secret length, field prime and a single (x, y)
// share. With --passphrase given once per share, each line is instead the
// record encrypted under that holder's passphrase. When unsealing, every
// passphrase is tried on every encrypted line.
//
// Global flags:
//
//	--field string
//	    prime field: default, auto, legacy64, mersenne127, mersenne521, ...
//	--log-json
//	    log as JSON
//	-v, --verbose
//	    debug logging
//
// Example:
// Encrypt the file 'archive.tar.gz' and split the key into 5 shares,
// requiring 3 to unseal, each share wrapped for one guardian:
//
//	seal lock -i archive.tar.gz -o archive.tar.gz.seal -s shares.txt -t 3 -n 5 \
//	    -p pw1 -p pw2 -p pw3 -p pw4 -p pw5
//
// Decrypt the file 'archive.tar.gz.seal' using the lines of three guardians:
//
//	seal unlock -i archive.tar.gz.seal -o archive.tar.gz -s shares.txt -p pw1 -p pw4 -p pw5
//
// Logs go to stderr.
package main
