package export

import (
	"io"
	"math"
	"strings"
	"text/template"

	"github.com/cavusmuhammed68/ICC-IEEE/core/recovery"
)

var recoveryColumns = []string{"recovery", "battery", "fuel_cell", "unsupplied", "minute"}

var recoveryTable = template.Must(template.New("recovery").Funcs(template.FuncMap{
	"f2":   round2,
	"join": strings.Join,
}).Parse(`\begin{tabular}{rrrrr}
\toprule
{{join .Header " & "}} \\
\midrule
{{range .Rows}}{{f2 .Recovery}} & {{f2 .Battery}} & {{f2 .FuelCell}} & {{f2 .Unsupplied}} & {{.Minute}} \\
{{end}}\bottomrule
\end{tabular}
`))

// WriteRecoveryLaTeX writes the recovery dispatch rows as a booktabs tabular
// with values rounded to two decimals.
func WriteRecoveryLaTeX(w io.Writer, rows []recovery.Row) error {
	header := make([]string, len(recoveryColumns))
	for i, c := range recoveryColumns {
		header[i] = strings.ReplaceAll(c, "_", `\_`)
	}
	return recoveryTable.Execute(w, struct {
		Header []string
		Rows   []recovery.Row
	}{header, rows})
}

func round2(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return formatFixed(r, 2)
}
