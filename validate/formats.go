package validate

import "strings"

// builtinFormats lists the formats and informats shipped with Base SAS. Any other
// name refers to a user-defined format catalog, which a transport file cannot carry.
var builtinFormats = func() map[string]struct{} {
	names := []string{
		// character
		"$", "$ASCII", "$BASE64X", "$BINARY", "$CHAR", "$EBCDIC", "$HEX", "$OCTAL",
		"$QUOTE", "$REVERJ", "$REVERS", "$UPCASE", "$VARYING", "$W",
		// numeric
		"BEST", "BESTD", "BINARY", "COMMA", "COMMAX", "D", "DOLLAR", "DOLLARX", "E",
		"EURO", "EUROX", "F", "FLOAT", "FRACT", "HEX", "IB", "IBR", "NEGPAREN", "NUMX",
		"OCTAL", "PD", "PERCENT", "PERCENTN", "PIB", "PK", "PVALUE", "RB", "ROMAN",
		"SSN", "WORDF", "WORDS", "Z", "ZD",
		// date, time and datetime
		"DATE", "DATEAMPM", "DATETIME", "DAY", "DDMMYY", "DDMMYYB", "DDMMYYC", "DDMMYYD",
		"DDMMYYN", "DDMMYYP", "DDMMYYS", "DOWNAME", "DTDATE", "DTMONYY", "DTWKDATX",
		"DTYEAR", "DTYYQC", "HHMM", "HOUR", "JULDAY", "JULIAN", "MMDDYY", "MMDDYYB",
		"MMDDYYC", "MMDDYYD", "MMDDYYN", "MMDDYYP", "MMDDYYS", "MMSS", "MMYY", "MONNAME",
		"MONTH", "MONYY", "QTR", "QTRR", "TIME", "TIMEAMPM", "TOD", "WEEKDATE",
		"WEEKDATX", "WEEKDAY", "WORDDATE", "WORDDATX", "YEAR", "YYMM", "YYMMDD",
		"YYMMDDB", "YYMMDDC", "YYMMDDD", "YYMMDDN", "YYMMDDP", "YYMMDDS", "YYMON", "YYQ",
		"YYQR",
		// ISO 8601
		"B8601DA", "B8601DN", "B8601DT", "B8601DZ", "B8601LZ", "B8601TM", "B8601TZ",
		"E8601DA", "E8601DN", "E8601DT", "E8601DZ", "E8601LZ", "E8601TM", "E8601TZ",
		"IS8601DA", "IS8601DN", "IS8601DT", "IS8601DZ", "IS8601LZ", "IS8601TM", "IS8601TZ",
		// informat-only
		"ANYDTDTE", "ANYDTDTM", "ANYDTTME", "BITS", "COMMAX", "TRAILSGN",
	}

	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}

	return m
}()

// IsBuiltinFormat reports whether name is a format or informat shipped with SAS.
// The empty name (w.d notation) is the built-in F format.
func IsBuiltinFormat(name string) bool {
	if name == "" {
		return true
	}
	_, ok := builtinFormats[strings.ToUpper(name)]

	return ok
}
