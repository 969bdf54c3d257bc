// Copyright 2026 VoidLight
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package omml

// latexSpecial lists characters that must be backslash-escaped in LaTeX
// text output.
var latexSpecial = map[rune]bool{
	'{': true, '}': true, '_': true, '^': true,
	'#': true, '&': true, '$': true, '%': true, '~': true,
}

const (
	// alignSep separates cells within a matrix or array row.
	alignSep = "&"
	// rowBreak separates rows in matrices and equation arrays.
	rowBreak = "\\\\"
	// argSlot marks where a function's argument is spliced into the
	// rendered function name. NUL cannot appear in XML character data,
	// so the marker never collides with document text.
	argSlot = "\x00"
)

// accentFormats maps combining accent characters to single-argument
// LaTeX formats.
var accentFormats = map[string]string{
	// Top accents
	"\u0300": "\\grave{%s}",
	"\u0301": "\\acute{%s}",
	"\u0302": "\\hat{%s}",
	"\u0303": "\\tilde{%s}",
	"\u0304": "\\bar{%s}",
	"\u0305": "\\overbar{%s}",
	"\u0306": "\\breve{%s}",
	"\u0307": "\\dot{%s}",
	"\u0308": "\\ddot{%s}",
	"\u0309": "\\ovhook{%s}",
	"\u030a": "\\ocirc{%s}",
	"\u030c": "\\check{%s}",
	"\u0310": "\\candra{%s}",
	"\u0312": "\\oturnedcomma{%s}",
	"\u0315": "\\ocommatopright{%s}",
	"\u031a": "\\droang{%s}",
	"\u0338": "\\not{%s}",
	"\u20d0": "\\leftharpoonaccent{%s}",
	"\u20d1": "\\rightharpoonaccent{%s}",
	"\u20d2": "\\vertoverlay{%s}",
	"\u20d6": "\\overleftarrow{%s}",
	"\u20d7": "\\vec{%s}",
	"\u20db": "\\dddot{%s}",
	"\u20dc": "\\ddddot{%s}",
	"\u20e1": "\\overleftrightarrow{%s}",
	"\u20e7": "\\annuity{%s}",
	"\u20e9": "\\widebridgeabove{%s}",
	"\u20f0": "\\asteraccent{%s}",
	// Bottom accents
	"\u0330": "\\wideutilde{%s}",
	"\u0331": "\\underbar{%s}",
	"\u20e8": "\\threeunderdot{%s}",
	"\u20ec": "\\underrightharpoondown{%s}",
	"\u20ed": "\\underleftharpoondown{%s}",
	"\u20ee": "\\underleftarrow{%s}",
	"\u20ef": "\\underrightarrow{%s}",
	// Over groupings
	"⎴": "\\overbracket{%s}",
	"⏜": "\\overparen{%s}",
	"⏞": "\\overbrace{%s}",
	// Under groupings
	"⎵": "\\underbracket{%s}",
	"⏝": "\\underparen{%s}",
	"⏟": "\\underbrace{%s}",
}

// defaultAccent is used when an accent element names no character.
const defaultAccent = "\\hat{%s}"

// bigOperators maps n-ary operator characters to LaTeX commands.
var bigOperators = map[string]string{
	"⅀": "\\Bbbsum",
	"∏": "\\prod",
	"∐": "\\coprod",
	"∑": "\\sum",
	"∫": "\\int",
	"⋀": "\\bigwedge",
	"⋁": "\\bigvee",
	"⋂": "\\bigcap",
	"⋃": "\\bigcup",
	"⨀": "\\bigodot",
	"⨁": "\\bigoplus",
	"⨂": "\\bigotimes",
}

// runeSubstitutions maps Unicode math characters in text runs to their
// LaTeX spellings. Mathematical-italic letters fold back to plain ASCII.
var runeSubstitutions = map[rune]string{
	'→': "\\rightarrow ",
	// Greek letters
	'\U0001d6fc': "\\alpha ",
	'\U0001d6fd': "\\beta ",
	'\U0001d6fe': "\\gamma ",
	'\U0001d6ff': "\\delta ",
	'\U0001d700': "\\epsilon ",
	'\U0001d701': "\\zeta ",
	'\U0001d702': "\\eta ",
	'\U0001d703': "\\theta ",
	'\U0001d704': "\\iota ",
	'\U0001d705': "\\kappa ",
	'\U0001d706': "\\lambda ",
	'\U0001d707': "\\mu ",
	'\U0001d708': "\\nu ",
	'\U0001d709': "\\xi ",
	'\U0001d70a': "\\omicron ",
	'\U0001d70b': "\\pi ",
	'\U0001d70c': "\\rho ",
	'\U0001d70d': "\\varsigma ",
	'\U0001d70e': "\\sigma ",
	'\U0001d70f': "\\tau ",
	'\U0001d710': "\\upsilon ",
	'\U0001d711': "\\phi ",
	'\U0001d712': "\\chi ",
	'\U0001d713': "\\psi ",
	'\U0001d714': "\\omega ",
	'\U0001d715': "\\partial ",
	'\U0001d716': "\\varepsilon ",
	'\U0001d717': "\\vartheta ",
	'\U0001d718': "\\varkappa ",
	'\U0001d719': "\\varphi ",
	'\U0001d71a': "\\varrho ",
	'\U0001d71b': "\\varpi ",
	// Arrows and dots
	'←': "\\leftarrow ",
	'↑': "\\uparrow ",
	'↓': "\\downarrow ",
	'↔': "\\leftrightarrow ",
	'↕': "\\updownarrow ",
	'↖': "\\nwarrow ",
	'↗': "\\nearrow ",
	'↘': "\\searrow ",
	'↙': "\\swarrow ",
	'⋮': "\\vdots ",
	'⋯': "\\cdots ",
	'⋰': "\\adots ",
	'⋱': "\\ddots ",
	// Relations
	'≠': "\\ne ",
	'≤': "\\leq ",
	'≥': "\\geq ",
	'≦': "\\leqq ",
	'≧': "\\geqq ",
	'≨': "\\lneqq ",
	'≩': "\\gneqq ",
	'≪': "\\ll ",
	'≫': "\\gg ",
	'∈': "\\in ",
	'∉': "\\notin ",
	'∋': "\\ni ",
	'∌': "\\nni ",
	'∞': "\\infty ",
	'±': "\\pm ",
	'∓': "\\mp ",
	// Italic Latin, uppercase
	'\U0001d434': "A", '\U0001d435': "B", '\U0001d436': "C",
	'\U0001d437': "D", '\U0001d438': "E", '\U0001d439': "F",
	'\U0001d43a': "G", '\U0001d43b': "H", '\U0001d43c': "I",
	'\U0001d43d': "J", '\U0001d43e': "K", '\U0001d43f': "L",
	'\U0001d440': "M", '\U0001d441': "N", '\U0001d442': "O",
	'\U0001d443': "P", '\U0001d444': "Q", '\U0001d445': "R",
	'\U0001d446': "S", '\U0001d447': "T", '\U0001d448': "U",
	'\U0001d449': "V", '\U0001d44a': "W", '\U0001d44b': "X",
	'\U0001d44c': "Y", '\U0001d44d': "Z",
	// Italic Latin, lowercase
	'\U0001d44e': "a", '\U0001d44f': "b", '\U0001d450': "c",
	'\U0001d451': "d", '\U0001d452': "e", '\U0001d453': "f",
	'\U0001d454': "g", '\U0001d456': "i", '\U0001d457': "j",
	'\U0001d458': "k", '\U0001d459': "l", '\U0001d45a': "m",
	'\U0001d45b': "n", '\U0001d45c': "o", '\U0001d45d': "p",
	'\U0001d45e': "q", '\U0001d45f': "r", '\U0001d460': "s",
	'\U0001d461': "t", '\U0001d462': "u", '\U0001d463': "v",
	'\U0001d464': "w", '\U0001d465': "x", '\U0001d466': "y",
	'\U0001d467': "z",
}

// functionNames maps recognized function-apply names to rendered forms
// containing the argument slot.
var functionNames = map[string]string{
	"sin":    "\\sin(" + argSlot + ")",
	"cos":    "\\cos(" + argSlot + ")",
	"tan":    "\\tan(" + argSlot + ")",
	"arcsin": "\\arcsin(" + argSlot + ")",
	"arccos": "\\arccos(" + argSlot + ")",
	"arctan": "\\arctan(" + argSlot + ")",
	"arccot": "\\arccot(" + argSlot + ")",
	"sinh":   "\\sinh(" + argSlot + ")",
	"cosh":   "\\cosh(" + argSlot + ")",
	"tanh":   "\\tanh(" + argSlot + ")",
	"coth":   "\\coth(" + argSlot + ")",
	"sec":    "\\sec(" + argSlot + ")",
	"csc":    "\\csc(" + argSlot + ")",
}

// barFormats maps bar positions to single-argument LaTeX formats.
var barFormats = map[string]string{
	"top": "\\overline{%s}",
	"bot": "\\underline{%s}",
}

const defaultBar = "\\overline{%s}"

// fractionFormats maps fraction types to numerator/denominator formats.
var fractionFormats = map[string]string{
	"bar":   "\\frac{%s}{%s}",
	"skw":   "^{%s}/_{%s}",
	"noBar": "\\genfrac{}{}{0pt}{}{%s}{%s}",
	"lin":   "{%s}/{%s}",
}

const defaultFraction = "\\frac{%s}{%s}"

// Delimiter defaults: parentheses when unspecified, a LaTeX null
// delimiter for an explicitly empty side.
const (
	delimiterFormat = "\\left%s%s\\right%s"
	defaultOpen     = "("
	defaultClose    = ")"
	nullDelimiter   = "."
)

const (
	radicalFormat       = "\\sqrt[%s]{%s}"
	radicalSquareFormat = "\\sqrt{%s}"
	eqArrayFormat       = "\\begin{array}{c}%s\\end{array}"
	matrixFormat        = "\\begin{matrix}%s\\end{matrix}"
	oversetFormat       = "\\overset{%s}{%s}"
	subscriptFormat     = "_{%s}"
	superscriptFormat   = "^{%s}"
)

// limitFunctions maps functions that take a lower limit to formats for
// the limit expression.
var limitFunctions = map[string]string{
	"lim": "\\lim_{%s}",
	"max": "\\max_{%s}",
	"min": "\\min_{%s}",
}
