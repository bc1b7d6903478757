package regtidy

import (
	"strings"
	"testing"
)

type structureCase struct {
	name     string
	html     string
	want     string
	contains []string
	excludes []string
}

func runStructureCases(t *testing.T, cfg *Config, tests []structureCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DirtyClean(tt.html, cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.want != "" && got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("expected output to contain %q, got %q", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("expected output to exclude %q, got %q", s, got)
				}
			}
		})
	}
}

func TestTitles(t *testing.T) {
	longName := strings.Repeat("a", 95)

	runStructureCases(t, plainConfig(), []structureCase{
		{
			name: "article with centered name",
			html: `<p align="center">1. gr.</p><p align="center">Gildissvið</p><p>Texti greinarinnar.</p>`,
			want: `<h3 class="article__title">1. gr. <em class="article__name">Gildissvið</em></h3><p>Texti greinarinnar.</p>`,
		},
		{
			name: "chapter name after break",
			html: `<p align="center"><strong>I. KAFLI<br>Almenn ákvæði</strong></p>`,
			want: `<h2 class="chapter__title">I. KAFLI <em class="chapter__name">Almenn ákvæði</em></h2>`,
		},
		{
			name: "chapter name after dash",
			html: `<p align="center">II. kafli – Gildistaka</p>`,
			want: `<h2 class="chapter__title">II. kafli <em class="chapter__name">Gildistaka</em></h2>`,
		},
		{
			name: "long name becomes a paragraph",
			html: `<p>1. gr. – ` + longName + `</p>`,
			want: `<h3 class="article__title">1. gr.</h3><p>` + longName + `</p>`,
		},
		{
			name: "legacy article class wins over content",
			html: `<p class="Grein">I. Kafli</p>`,
			want: `<h3 class="article__title">I. Kafli</h3>`,
		},
		{
			name: "legacy name merges into title",
			html: `<p class="Grein">2. gr.</p><p class="Greinarheiti">Skilgreiningar</p>`,
			want: `<h3 class="article__title">2. gr. <em class="article__name">Skilgreiningar</em></h3>`,
		},
		{
			name: "provisional article",
			html: `<p align="center">Ákvæði til bráðabirgða.</p>`,
			want: `<h3 class="article__title article__title--provisional">Ákvæði til bráðabirgða.</h3>`,
		},
		{
			name: "appendix",
			html: `<p align="center">Viðauki I</p>`,
			want: `<h2 class="chapter__title chapter__title--appendix">Viðauki I</h2>`,
		},
		{
			name: "uncentered roman numeral is not a chapter",
			html: `<p>I.</p>`,
			want: `<p>I.</p>`,
		},
		{
			name:     "doc title",
			html:     `<p>REGLUGERÐ um breytingu á reglugerð nr. 1/2000.</p><p>1. gr.</p>`,
			contains: []string{`<p class="doc__title">REGLUGERÐ um breytingu á reglugerð nr. 1/2000.</p>`, `<h3 class="article__title">1. gr.</h3>`},
		},
		{
			name:     "letter past e is not an article",
			html:     `<p align="center">12f. gr.</p>`,
			contains: []string{"12f. gr."},
			excludes: []string{"article__title", "<h3"},
		},
		{
			name:     "upper case gr is not an article",
			html:     `<p align="center">1. GR.</p>`,
			contains: []string{"1. GR."},
			excludes: []string{"article__title", "<h3"},
		},
		{
			name:     "spaced letter is not an article",
			html:     `<p>5 x. gr.</p>`,
			want:     `<p>5 x. gr.</p>`,
			excludes: []string{"article__title"},
		},
		{
			name:     "legacy classes removed after reclassification",
			html:     `<p class="Kafli">III. KAFLI</p>`,
			contains: []string{`<h2 class="chapter__title">III. KAFLI</h2>`},
			excludes: []string{"Kafli\""},
		},
	})
}

func TestSignatures(t *testing.T) {
	runStructureCases(t, plainConfig(), []structureCase{
		{
			name: "date and signatories",
			html: `<p>Heilbrigðisráðuneytinu, 12. mars 2020.</p><p>Jón Jónsson</p><p align="right">Anna Önnudóttir</p>`,
			want: `<p class="Dags">Heilbrigðisráðuneytinu, 12. mars 2020.</p><p class="Undirritun">Jón Jónsson</p><p align="right" class="Undirritun">Anna Önnudóttir</p>`,
		},
		{
			name: "date split from signatory",
			html: `<p>Heilbrigðisráðuneytinu, 12. mars 2020.<br>Jón Jónsson</p>`,
			want: `<p class="Dags">Heilbrigðisráðuneytinu, 12. mars 2020.</p><p class="Undirritun">Jón Jónsson</p>`,
		},
		{
			name: "on behalf of",
			html: `<p>F.h.r.</p><p>Jón Jónsson</p>`,
			want: `<p class="FHUndirskr">F.h.r.</p><p class="Undirritun">Jón Jónsson</p>`,
		},
		{
			name: "year out of range",
			html: `<p>Heilbrigðisráðuneytinu, 12. mars 1700.</p><p>Jón Jónsson</p>`,
			want: `<p>Heilbrigðisráðuneytinu, 12. mars 1700.</p><p>Jón Jónsson</p>`,
		},
	})
}

func TestFootnotes(t *testing.T) {
	html := `<p>Texti<a href="#_ftn1" name="_ftnref1">[1]</a></p>` +
		`<div style="mso-element:footnote-list"><div id="ftn1" style="mso-element:footnote">` +
		`<p><a href="#_ftnref1" name="_ftn1">[1]</a> Neðanmálsgrein.</p></div></div>`

	byID := `<p>Texti<a id="_ftnref1" href="#_ftn1">1</a></p>` +
		`<p><a id="_ftn1" href="#_ftnref1">1)</a> Neðanmálsgrein.</p>`

	runStructureCases(t, plainConfig(), []structureCase{
		{
			name: "anchors with ids keep their cross references",
			html: byID,
			contains: []string{
				`<a class="footnote-reference" href="#_ftn1" id="_ftnref1">1</a>`,
				`<p class="footnote" id="_ftn1"><a class="footnote__marker" href="#_ftnref1">1)</a>`,
			},
		},
		{
			name: "reference and footnote paired",
			html: html,
			want: `<p>Texti<a class="footnote-reference" href="#_ftn1" id="_ftnref1">1</a></p>` +
				`<p class="footnote" id="_ftn1"><a class="footnote__marker" href="#_ftnref1">1</a> Neðanmálsgrein.</p>`,
		},
	})
}

func TestLists(t *testing.T) {
	runStructureCases(t, plainConfig(), []structureCase{
		{
			name: "decimal list",
			html: `<blockquote><p>1. F1<br>2. F2</p></blockquote>`,
			want: `<ol><li>F1</li><li>F2</li></ol>`,
		},
		{
			name: "decimal list with parenthesis",
			html: `<blockquote><p>1) F1<br/>2) F2</p></blockquote>`,
			want: `<ol><li>F1</li><li>F2</li></ol>`,
		},
		{
			name: "alpha list",
			html: `<blockquote><p>a) F1<br>b) F2</p></blockquote>`,
			want: `<ol type="a"><li>F1</li><li>F2</li></ol>`,
		},
		{
			name: "bullets across paragraphs",
			html: `<blockquote><p>- F1</p><p>- F2</p></blockquote>`,
			want: `<ul><li>F1</li><li>F2</li></ul>`,
		},
		{
			name: "list starting later",
			html: `<blockquote><p>3. F3<br>4. F4</p></blockquote>`,
			want: `<ol start="3"><li>F3</li><li>F4</li></ol>`,
		},
		{
			name: "roman list",
			html: `<blockquote><p>i) F1<br>ii) F2</p></blockquote>`,
			want: `<ol type="i"><li>F1</li><li>F2</li></ol>`,
		},
		{
			name: "formatting after marker kept",
			html: `<blockquote><p>1. <em>F1</em><br>2. F2</p></blockquote>`,
			want: `<ol><li><em>F1</em></li><li>F2</li></ol>`,
		},
		{
			name:     "mixed markers kept as paragraphs",
			html:     `<blockquote><p>- T1<br>1. T2</p></blockquote>`,
			want:     `<blockquote><p>- T1</p><p>1. T2</p></blockquote>`,
			excludes: []string{"<ul", "<ol"},
		},
		{
			name:     "bullets followed by a number kept as paragraphs",
			html:     `<blockquote><p>- T1<br/>- T2<br/>1. T3</p></blockquote>`,
			want:     `<blockquote><p>- T1</p><p>- T2</p><p>1. T3</p></blockquote>`,
			excludes: []string{"<ul", "<ol", "<li"},
		},
		{
			name:     "multi-level markers kept as paragraphs",
			html:     `<blockquote><p>1.1. A<br>1.2. B</p></blockquote>`,
			want:     `<blockquote><p>1.1. A</p><p>1.2. B</p></blockquote>`,
			excludes: []string{"<ol"},
		},
		{
			name: "plain quote untouched",
			html: `<blockquote><p>Tilvitnun</p></blockquote>`,
			want: `<blockquote><p>Tilvitnun</p></blockquote>`,
		},
	})
}

func TestTables(t *testing.T) {
	runStructureCases(t, plainConfig(), []structureCase{
		{
			name: "borderless table is layout",
			html: `<table><tr><td>A</td><td>B</td></tr><tr><td>C</td><td>D</td></tr></table>`,
			want: `<table class="layout"><tbody><tr><td>A</td><td>B</td></tr><tr><td>C</td><td>D</td></tr></tbody></table>`,
		},
		{
			name:     "list layout",
			html:     `<table><tr><td>a)</td><td>Fyrsti liður</td></tr><tr><td>b)</td><td>Annar liður</td></tr></table>`,
			contains: []string{`<table class="layout layout--list">`},
		},
		{
			name:     "zero border is layout",
			html:     `<table border="0"><td width="50">X</td><td width="450">Y</td></table>`,
			contains: []string{`<table class="layout">`, "<td>X</td><td>Y</td>"},
		},
		{
			name:     "border one is not layout",
			html:     `<table border="1"><td width="50">X</td><td width="450">Y</td></table>`,
			contains: []string{"<table><tbody>", "<td>X</td><td>Y</td>"},
			excludes: []string{"layout"},
		},
		{
			name: "bordered table is data",
			html: `<table border="1"><tr><td>A</td><td>B</td></tr></table>`,
			want: `<table><tbody><tr><td>A</td><td>B</td></tr></tbody></table>`,
		},
		{
			name: "grid class is data",
			html: `<table class="MsoTableGrid" style="border-collapse:collapse;border:none"><tr><td>A</td><td>B</td></tr></table>`,
			want: `<table><tbody><tr><td>A</td><td>B</td></tr></tbody></table>`,
		},
		{
			name: "caption row hoisted",
			html: `<table border="1"><tr><td colspan="2">Tafla 1</td></tr><tr><td>A</td><td>B</td></tr></table>`,
			want: `<p>Tafla 1</p><table><tbody><tr><td>A</td><td>B</td></tr></tbody></table>`,
		},
		{
			name: "footer row hoisted",
			html: `<table border="1"><tr><td>A</td><td>B</td></tr><tr><td colspan="2">Heimild</td></tr></table>`,
			want: `<table><tbody><tr><td>A</td><td>B</td></tr></tbody></table><p>Heimild</p>`,
		},
		{
			name: "single cell layout table unwrapped",
			html: `<table><tr><td><p>Innihald</p></td></tr></table>`,
			want: `<p>Innihald</p>`,
		},
		{
			name: "spans kept",
			html: `<table border="1"><tr><td rowspan="2" colspan="1">A</td><td>B</td></tr><tr><td>C</td></tr></table>`,
			want: `<table><tbody><tr><td rowspan="2">A</td><td>B</td></tr><tr><td>C</td></tr></tbody></table>`,
		},
	})
}

func TestImagesAndLinks(t *testing.T) {
	cfg := plainConfig()
	cfg.FileServerHost = "https://skrar.example.is"

	runStructureCases(t, cfg, []structureCase{
		{
			name:     "spacer dropped and source rewritten",
			html:     `<p><img src="spacer.gif" width="1" height="1">Texti<img src="/files/mynd.png?v=2" width="100"></p>`,
			contains: []string{`src="https://skrar.example.is/files/mynd.png"`, "Texti"},
			excludes: []string{"spacer.gif", "v=2", "width"},
		},
		{
			name:     "relative image resolved",
			html:     `<p><img src="skjal_files/image001.png" alt="Mynd"></p>`,
			contains: []string{`src="https://skrar.example.is/skjal_files/image001.png"`, `alt="Mynd"`},
		},
		{
			name:     "file link rewritten",
			html:     `<p><a href="/files/skjal.pdf?x=1">Skjal</a></p>`,
			contains: []string{`href="https://skrar.example.is/files/skjal.pdf"`},
		},
		{
			name:     "other links untouched",
			html:     `<p><a href="https://www.example.is/um?a=1">Vefur</a></p>`,
			contains: []string{`href="https://www.example.is/um?a=1"`},
		},
		{
			name:     "style sized spacer dropped",
			html:     `<p>A<img src="x.gif" style="width:2px;height:2px">B</p>`,
			excludes: []string{"<img"},
		},
	})
}

func TestLegacyClassesWithoutExtraClasses(t *testing.T) {
	cfg := plainConfig()
	cfg.ExtraAllowedClasses = nil

	runStructureCases(t, cfg, []structureCase{
		{
			name:     "explicit article class wins over chapter grammar",
			html:     `<p class="Grein" align="center">I. Kafli</p>`,
			contains: []string{`class="article__title"`, "I. Kafli"},
			excludes: []string{"chapter__title", "Grein"},
		},
		{
			name: "legacy name merges into title",
			html: `<p class="Grein">2. gr.</p><p class="Greinarheiti">Skilgreiningar</p>`,
			want: `<h3 class="article__title">2. gr. <em class="article__name">Skilgreiningar</em></h3>`,
		},
	})
}
