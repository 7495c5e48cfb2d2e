package render

// Gnuplot scripts. Data files are tab-separated with a header line; the first
// column is x and every following column is one series.
const (
	headerTmpl = `set title '{{.Title}}'
set terminal svg size 1000,600 dynamic enhanced font 'sans,11'
set output '{{.Output}}'
set datafile separator '\t'
set key outside right top autotitle columnheader
set grid ytics
{{- if .XLabel}}
set xlabel '{{.XLabel}}'
{{- end}}
{{- if .YLabel}}
set ylabel '{{.YLabel}}'
{{- end}}
{{- if .TimeX}}
set xdata time
set timefmt '%Y-%m-%d'
set format x '%b %d'
set xtics rotate by 45 right
{{- end}}
{{- if .LogX}}
set logscale x
{{- end}}
{{- if or .XStart .XEnd}}
set xrange [{{.XStart}}:{{.XEnd}}]
{{- end}}
{{- range .Markers}}
set arrow from {{.X}}, graph 0 to {{.X}}, graph 1 nohead dt 2 lc 'gray40'
{{- if .Label}}
set label {{.Label}} at {{.X}}, graph 0.97 left offset 0.5,0 textcolor 'gray40'
{{- end}}
{{- end}}
`

	lineTmpl = headerTmpl + `
set yrange [0:*]
plot for [i=2:{{.LastColumn}}] '{{.DataPath}}' using 1:i with lines lw 2
`

	areaTmpl = headerTmpl + `
set yrange [0:*]
set style fill solid 0.6 noborder
# Stack the series by summing columns 2..i
plot for [i={{.LastColumn}}:2:-1] '{{.DataPath}}' using 1:(sum [c=2:i] column(c)) with filledcurves x1 title columnheader(i)
`

	barTmpl = headerTmpl + `
set style data histograms
set style histogram rowstacked
set style fill solid 0.8 border -1
set boxwidth 0.8
set yrange [0:*]
{{- if .Horizontal}}
# Rotated bars: categories read bottom to top in file order
set xtics rotate by 90 right
set ytics rotate by 90
{{- else}}
set xtics rotate by 45 right
{{- end}}
plot for [i=2:{{.LastColumn}}] '{{.DataPath}}' using i:xtic(1)
`

	pieTmpl = headerTmpl + `
stats '{{.DataPath}}' using 2 nooutput
total = STATS_sum
set style fill solid 0.8 border -1
set boxwidth 0.8
set yrange [0:100]
set ylabel 'Share (%)'
set key off
plot '{{.DataPath}}' using 0:($2/total*100):xtic(1) with boxes lc variable, \
     '' using 0:($2/total*100):(sprintf('%.1f%%', $2/total*100)) with labels offset 0,1 notitle
`

	histogramTmpl = headerTmpl + `
bin(x) = floor(x/{{.BinWidth}})*{{.BinWidth}}
set style fill solid 0.6 border -1
set boxwidth {{.BinWidth}}
set yrange [0:*]
plot for [i=2:{{.LastColumn}}] '{{.DataPath}}' using (bin(column(i))):(1.0) smooth freq with boxes title columnheader(i)
`
)

const htmlTableTmpl = `<table class="tracker-table">
<caption>{{.Title}}</caption>
<thead>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
`
