package explain

import (
	"math/rand"
	"testing"
)

// corruptor mangles well-formed plan lines so parsing robustness can be
// checked against inputs fuzzing rarely reaches in short runs.
type corruptor struct {
	rng *rand.Rand
}

func (c *corruptor) mangle(line string) string {
	b := []byte(line)
	switch c.rng.Intn(5) {
	case 0: // flip a byte
		if len(b) > 0 {
			b[c.rng.Intn(len(b))] ^= 0xFF
		}
	case 1: // drop a byte
		if len(b) > 0 {
			i := c.rng.Intn(len(b))
			b = append(b[:i], b[i+1:]...)
		}
	case 2: // insert a random byte
		i := c.rng.Intn(len(b) + 1)
		junk := byte(c.rng.Intn(256))
		b = append(b[:i], append([]byte{junk}, b[i:]...)...)
	case 3: // truncate
		if len(b) > 0 {
			b = b[:c.rng.Intn(len(b))]
		}
	case 4: // dangle an incomplete UTF-8 sequence at the end
		b = append(b, 0xC3)
	}
	return string(b)
}

func TestParseLineCorruptedInputs(t *testing.T) {
	seeds := []string{
		"SCAN customers",
		"SCAN orders USING COVERING INDEX idx_orders_customer",
		"SEARCH orders USING INDEX idx_orders_customer (customer_id=?)",
		"SEARCH customers USING INTEGER PRIMARY KEY (rowid=?)",
		"USE TEMP B-TREE FOR ORDER BY",
		"USE TEMP B-TREE FOR GROUP BY",
		"CO-ROUTINE ranked",
	}

	c := &corruptor{rng: rand.New(rand.NewSource(2025))}
	known := map[StepKind]bool{
		StepScan:   true,
		StepSearch: true,
		StepTemp:   true,
		StepOpaque: true,
	}

	for i := 0; i < 2000; i++ {
		line := c.mangle(seeds[i%len(seeds)])
		step := ParseLine(line)
		if step.Detail != line {
			t.Fatalf("ParseLine(%q).Detail = %q, want the input preserved", line, step.Detail)
		}
		if !known[step.Kind] {
			t.Fatalf("ParseLine(%q).Kind = %q, not a known step kind", line, step.Kind)
		}
	}
}
