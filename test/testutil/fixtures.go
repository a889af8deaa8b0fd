package testutil

// SampleFiles provides representative plaintext note content for storage
// and directory-codec benchmarks and tests.
var SampleFiles = map[string]string{
	"notes/welcome.md": `# Welcome

This is a scratch vault used for testing.

## Features
- Nested folders
- Attachments
- Long-form notes
`,
	"daily/2024-01-15.md": `# Daily Note - 2024-01-15

## Tasks
- [x] Review worker pool changes
- [ ] Write directory codec tests
- [ ] Update docs

## Notes
Quick note about encryption throughput.
`,
	"concepts/testing.md": `# Testing Strategy

## Unit Tests
- Table-driven tests
- Fixtures over mocks where the real type is cheap

## Integration Tests
- Full round trips through the cryptor
- Directory tree structure checks
`,
	"attachments/readme.txt": `This folder holds binary attachments.

Files in use for testing:
- example.png (sample image)
- document.pdf (sample document)
`,
}

// SampleBinaryFiles provides representative binary attachment content.
var SampleBinaryFiles = map[string][]byte{
	"attachments/example.png": {
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG header
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, // 1x1 pixel
		0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53,
		0xDE, 0x00, 0x00, 0x00, 0x09, 0x70, 0x48, 0x59,
		0x73, 0x00, 0x00, 0x0B, 0x13, 0x00, 0x00, 0x0B,
		0x13, 0x01, 0x00, 0x9A, 0x9C, 0x18, 0x00, 0x00,
		0x00, 0x0C, 0x49, 0x44, 0x41, 0x54, 0x08, 0x57,
		0x63, 0xF8, 0x0F, 0x00, 0x00, 0x01, 0x00, 0x01,
		0x5C, 0x6A, 0xE2, 0x8F, 0x00, 0x00, 0x00, 0x00,
		0x49, 0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82,
	},
	"attachments/document.pdf": {
		0x25, 0x50, 0x44, 0x46, 0x2D, 0x31, 0x2E, 0x34, // %PDF-1.4
		0x0A, 0x25, 0xE2, 0xE3, 0xCF, 0xD3, 0x0A, // binary comment
		0x31, 0x20, 0x30, 0x20, 0x6F, 0x62, 0x6A, 0x0A, // 1 0 obj
		0x3C, 0x3C, 0x2F, 0x54, 0x79, 0x70, 0x65, 0x2F,
		0x43, 0x61, 0x74, 0x61, 0x6C, 0x6F, 0x67, 0x2F,
		0x50, 0x61, 0x67, 0x65, 0x73, 0x20, 0x32, 0x20,
		0x30, 0x20, 0x52, 0x3E, 0x3E, 0x0A, 0x65, 0x6E,
		0x64, 0x6F, 0x62, 0x6A, 0x0A,
	},
}
