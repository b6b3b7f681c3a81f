package sie

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tinoosan/bokforing/internal/ledger"
)

const sieDateLayout = "20060102"

// Parse reads decoded SIE4 text into a File. The format is line-oriented:
// empty lines and // comments are skipped, everything else is tokenized and
// dispatched on its leading tag. Any line that fails numeric or date parsing
// aborts the whole parse; there is no best-effort import.
func Parse(text string) (*File, error) {
	f := &File{Years: make(map[int]Period)}
	var current *Voucher
	sawCompany := false

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimRight(raw, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") {
			continue
		}
		tokens := tokenize(trimmed)
		if len(tokens) == 0 {
			continue
		}

		switch strings.ToUpper(tokens[0]) {
		case "{":
			// opening brace of a voucher block, nothing to do
		case "}":
			if current != nil {
				f.Vouchers = append(f.Vouchers, *current)
				current = nil
			}
		case "#FLAGGA":
			if len(tokens) > 1 {
				n, err := strconv.Atoi(tokens[1])
				if err != nil {
					return nil, invalidFormat(lineNo, "bad #FLAGGA value %q", tokens[1])
				}
				f.Flag = n
			}
		case "#FORMAT":
			if len(tokens) > 1 {
				f.Format = tokens[1]
			}
		case "#SIETYP":
			if len(tokens) > 1 {
				f.Type = tokens[1]
			}
		case "#PROGRAM":
			if len(tokens) > 1 {
				f.Program = tokens[1]
			}
			if len(tokens) > 2 {
				f.ProgramVer = tokens[2]
			}
		case "#GEN":
			if len(tokens) > 1 {
				d, err := time.Parse(sieDateLayout, tokens[1])
				if err != nil {
					return nil, invalidFormat(lineNo, "bad #GEN date %q", tokens[1])
				}
				f.Generated = d
			}
		case "#FNAMN":
			if len(tokens) < 2 {
				return nil, invalidFormat(lineNo, "#FNAMN requires a company name")
			}
			f.CompanyName = tokens[1]
			sawCompany = true
		case "#ORGNR":
			if len(tokens) > 1 {
				f.OrgNumber = tokens[1]
			}
		case "#RAR":
			if len(tokens) < 4 {
				return nil, invalidFormat(lineNo, "#RAR requires index, start and end")
			}
			idx, err := strconv.Atoi(tokens[1])
			if err != nil {
				return nil, invalidFormat(lineNo, "bad #RAR index %q", tokens[1])
			}
			start, err := time.Parse(sieDateLayout, tokens[2])
			if err != nil {
				return nil, invalidFormat(lineNo, "bad #RAR start date %q", tokens[2])
			}
			end, err := time.Parse(sieDateLayout, tokens[3])
			if err != nil {
				return nil, invalidFormat(lineNo, "bad #RAR end date %q", tokens[3])
			}
			f.Years[idx] = Period{Start: start, End: end}
		case "#KONTO":
			if len(tokens) < 3 {
				return nil, invalidFormat(lineNo, "#KONTO requires number and name")
			}
			f.Accounts = append(f.Accounts, Account{Number: tokens[1], Name: tokens[2]})
		case "#IB", "#UB", "#RES":
			bal, err := parseBalance(tokens, lineNo)
			if err != nil {
				return nil, err
			}
			switch strings.ToUpper(tokens[0]) {
			case "#IB":
				f.OpeningBalances = append(f.OpeningBalances, bal)
			case "#UB":
				f.ClosingBalances = append(f.ClosingBalances, bal)
			default:
				f.Results = append(f.Results, bal)
			}
		case "#VER":
			// Flush any voucher still in progress: malformed files sometimes
			// miss a closing brace and the next #VER is the only signal.
			if current != nil {
				f.Vouchers = append(f.Vouchers, *current)
				current = nil
			}
			if len(tokens) < 4 {
				return nil, invalidFormat(lineNo, "#VER requires series, number and date")
			}
			num, err := strconv.Atoi(tokens[2])
			if err != nil {
				return nil, invalidFormat(lineNo, "bad #VER number %q", tokens[2])
			}
			date, err := time.Parse(sieDateLayout, tokens[3])
			if err != nil {
				return nil, invalidFormat(lineNo, "bad #VER date %q", tokens[3])
			}
			v := Voucher{Series: tokens[1], Number: num, Date: date}
			if len(tokens) > 4 && tokens[4] != "{" {
				v.Description = tokens[4]
			}
			current = &v
		case "#TRANS":
			if current == nil {
				// A #TRANS outside any #VER block has no voucher to attach
				// to and is ignored.
				continue
			}
			tr, err := parseTrans(tokens, lineNo)
			if err != nil {
				return nil, err
			}
			current.Transactions = append(current.Transactions, tr)
		default:
			// Unknown tags (#ADRESS, #DIM, #OBJEKT, ...) are tolerated so
			// files from richer exporters still import.
		}
	}
	if current != nil {
		f.Vouchers = append(f.Vouchers, *current)
	}
	if !sawCompany {
		return nil, missingField("#FNAMN")
	}
	return f, nil
}

func parseBalance(tokens []string, lineNo int) (Balance, error) {
	if len(tokens) < 4 {
		return Balance{}, invalidFormat(lineNo, "%s requires year index, account and amount", tokens[0])
	}
	idx, err := strconv.Atoi(tokens[1])
	if err != nil {
		return Balance{}, invalidFormat(lineNo, "bad %s year index %q", tokens[0], tokens[1])
	}
	amount, err := parseAmount(tokens[3])
	if err != nil {
		return Balance{}, invalidFormat(lineNo, "bad %s amount %q", tokens[0], tokens[3])
	}
	return Balance{YearIndex: idx, AccountNumber: tokens[2], Amount: amount}, nil
}

// parseTrans reads "#TRANS account {objects} amount [date] [description]".
// The optional object list between braces carries dimension data this engine
// does not model; it is skipped.
func parseTrans(tokens []string, lineNo int) (Transaction, error) {
	if len(tokens) < 3 {
		return Transaction{}, invalidFormat(lineNo, "#TRANS requires account and amount")
	}
	tr := Transaction{AccountNumber: tokens[1]}
	rest := tokens[2:]
	if rest[0] == "{" {
		j := 1
		for j < len(rest) && rest[j] != "}" {
			j++
		}
		if j >= len(rest) {
			return Transaction{}, invalidFormat(lineNo, "#TRANS object list is not closed")
		}
		rest = rest[j+1:]
	}
	if len(rest) == 0 {
		return Transaction{}, invalidFormat(lineNo, "#TRANS is missing an amount")
	}
	amount, err := parseAmount(rest[0])
	if err != nil {
		return Transaction{}, invalidFormat(lineNo, "bad #TRANS amount %q", rest[0])
	}
	tr.Amount = amount
	rest = rest[1:]
	// An optional transaction date precedes the optional description.
	if len(rest) > 0 {
		if _, derr := time.Parse(sieDateLayout, rest[0]); derr == nil {
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		tr.Description = rest[0]
	}
	return tr, nil
}

// tokenize splits a line into fields. Double quotes toggle a mode in which
// spaces do not separate tokens and a doubled quote escapes a literal quote;
// braces are emitted as standalone structural tokens.
func tokenize(line string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	hasCur := false

	flush := func() {
		if hasCur {
			tokens = append(tokens, cur.String())
			cur.Reset()
			hasCur = false
		}
	}

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuote && i+1 < len(runes) && runes[i+1] == '"' {
				cur.WriteRune('"')
				hasCur = true
				i++
				continue
			}
			inQuote = !inQuote
			hasCur = true // an empty quoted string is still a token
		case inQuote:
			cur.WriteRune(r)
			hasCur = true
		case r == '{' || r == '}':
			flush()
			tokens = append(tokens, string(r))
		case r == ' ' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
			hasCur = true
		}
	}
	flush()
	return tokens
}

// parseAmount converts a SIE decimal amount ("123,45", "-1250" or "123.45")
// to öre, rounding to the nearest whole öre.
func parseAmount(s string) (ledger.Ore, error) {
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return 0, err
	}
	return ledger.Ore(d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()), nil
}
