package maps

import (
	"strings"
	"testing"
)

const sampleMaps = `` +
	"55a1b2c3d000-55a1b2c3e000 r--p 00000000 08:01 131081 /usr/bin/cat\n" +
	"55a1b2c3e000-55a1b2c3f000 r-xp 00001000 08:01 131081 /usr/bin/cat\n" +
	"7f1234500000-7f1234520000 r--p 00000000 08:01 262150 /lib/x86_64-linux-gnu/libc.so.6\n" +
	"7f1234700000-7f1234701000 rw-p 00000000 00:00 0 \n" +
	"7fffabcd0000-7fffabcf1000 rw-p 00000000 00:00 0 [stack]\n" +
	"7fffabdd0000-7fffabdd2000 r-xp 00000000 00:00 0 [vdso]\n"

func TestParseExtractsPathname(t *testing.T) {
	mappings := Parse(strings.NewReader(sampleMaps))

	if len(mappings) != 6 {
		t.Fatalf("got %d mappings, want 6", len(mappings))
	}

	if mappings[2].Pathname != "/lib/x86_64-linux-gnu/libc.so.6" {
		t.Fatalf("got pathname %q", mappings[2].Pathname)
	}
	if mappings[2].Start != 0x7f1234500000 || mappings[2].End != 0x7f1234520000 {
		t.Fatalf("got range %#x-%#x", mappings[2].Start, mappings[2].End)
	}
}

func TestReadableRequiresOffsetZero(t *testing.T) {
	mappings := Parse(strings.NewReader(sampleMaps))

	if !mappings[0].Readable() {
		t.Fatalf("expected first cat mapping (r--p, offset 0) to be readable")
	}
	if mappings[1].Readable() {
		t.Fatalf("expected second cat mapping (offset 0x1000) to not be readable")
	}
}

func TestSyntheticDetectsAnonymousAndBracketedRegions(t *testing.T) {
	mappings := Parse(strings.NewReader(sampleMaps))

	if !mappings[3].Synthetic() {
		t.Fatalf("expected anonymous empty-pathname mapping to be synthetic")
	}
	if !mappings[4].Synthetic() {
		t.Fatalf("expected [stack] to be synthetic")
	}
	if !mappings[5].Synthetic() {
		t.Fatalf("expected [vdso] to be synthetic")
	}
	if mappings[2].Synthetic() {
		t.Fatalf("expected libc.so.6 mapping to not be synthetic")
	}
}

func TestParseSkipsMalformedLines(t *testing.T) {
	mappings := Parse(strings.NewReader("not a maps line\n" + sampleMaps))
	if len(mappings) != 6 {
		t.Fatalf("got %d mappings, want malformed leading line skipped, 6 remain", len(mappings))
	}
}
