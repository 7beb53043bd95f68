package molfile

import (
	"fmt"
	"strings"

	"github.com/turtacn/keyip-molkit/pkg/errors"
)

// RecordSeparator terminates each record of an SD file.
const RecordSeparator = "$$$$"

// SplitSDF splits SD file text into molfile records.  Blank trailing records
// are dropped.
func SplitSDF(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var (
		records []string
		current []string
	)
	flush := func() {
		rec := strings.Join(current, "\n")
		if strings.TrimSpace(rec) != "" {
			records = append(records, rec+"\n")
		}
		current = current[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimRight(line, " ") == RecordSeparator {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return records
}

// ParseSDF decodes every record of an SD file.  Line numbers in returned
// format errors are relative to the failing record, whose 1-based position
// is named in the error message.
func ParseSDF(text string, opts Options) ([]*Result, error) {
	records := SplitSDF(text)
	results := make([]*Result, 0, len(records))
	for i, rec := range records {
		res, err := Parse(rec, opts)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("sdf record %d", i+1))
		}
		results = append(results, res)
	}
	return results, nil
}

//Personal.AI order the ending
