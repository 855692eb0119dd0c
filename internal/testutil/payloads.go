// payloads.go - Canonical test payloads shared across packages
package testutil

// EICARTestString is the 68-byte standard antivirus test payload.
const EICARTestString = `X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`

// EICARZip returns a 184-byte ZIP archive containing eicar.com stored
// uncompressed, so the test string is visible to substring matchers.
func EICARZip() []byte {
	return []byte{
		0x50, 0x4b, 0x03, 0x04, 0x0a, 0x00, 0x00, 0x00, 0x00, 0x00, 0xe0, 0x98, 0xb8, 0x28,
		0x3c, 0xcf, 0x51, 0x68, 0x44, 0x00, 0x00, 0x00, 0x44, 0x00, 0x00, 0x00, 0x09, 0x00,
		0x00, 0x00, 0x65, 0x69, 0x63, 0x61, 0x72, 0x2e, 0x63, 0x6f, 0x6d, 0x58, 0x35, 0x4f,
		0x21, 0x50, 0x25, 0x40, 0x41, 0x50, 0x5b, 0x34, 0x5c, 0x50, 0x5a, 0x58, 0x35, 0x34,
		0x28, 0x50, 0x5e, 0x29, 0x37, 0x43, 0x43, 0x29, 0x37, 0x7d, 0x24, 0x45, 0x49, 0x43,
		0x41, 0x52, 0x2d, 0x53, 0x54, 0x41, 0x4e, 0x44, 0x41, 0x52, 0x44, 0x2d, 0x41, 0x4e,
		0x54, 0x49, 0x56, 0x49, 0x52, 0x55, 0x53, 0x2d, 0x54, 0x45, 0x53, 0x54, 0x2d, 0x46,
		0x49, 0x4c, 0x45, 0x21, 0x24, 0x48, 0x2b, 0x48, 0x2a, 0x50, 0x4b, 0x01, 0x02, 0x14,
		0x00, 0x0a, 0x00, 0x00, 0x00, 0x00, 0x00, 0xe0, 0x98, 0xb8, 0x28, 0x3c, 0xcf, 0x51,
		0x68, 0x44, 0x00, 0x00, 0x00, 0x44, 0x00, 0x00, 0x00, 0x09, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00, 0xff, 0x81, 0x00, 0x00, 0x00, 0x00, 0x65,
		0x69, 0x63, 0x61, 0x72, 0x2e, 0x63, 0x6f, 0x6d, 0x50, 0x4b, 0x05, 0x06, 0x00, 0x00,
		0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x37, 0x00, 0x00, 0x00, 0x6b, 0x00, 0x00, 0x00,
		0x00, 0x00,
	}
}

// MinimalPDF returns a 130-byte well-formed PDF document.
func MinimalPDF() []byte {
	return []byte("%PDF-1.\n" +
		"1 0 obj<</Pages 2 0 R>>endobj\n" +
		"2 0 obj<</Kids[3 0 R]/Count 1>>endobj\n" +
		"3 0 obj<</Parent 2 0 R>>endobj\n" +
		"trailer <</Root 1 0 R>>")
}
