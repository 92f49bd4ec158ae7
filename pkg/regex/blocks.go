package regex

import "strings"

type block struct {
	lo, hi rune
}

// blocks maps normalized Unicode block names to their code point ranges.
// Surrogate and private-use blocks are not listed.
var blocks = map[string]block{
	"basiclatin":                           {0x0000, 0x007F},
	"latin1supplement":                     {0x0080, 0x00FF},
	"latinextendeda":                       {0x0100, 0x017F},
	"latinextendedb":                       {0x0180, 0x024F},
	"ipaextensions":                        {0x0250, 0x02AF},
	"spacingmodifierletters":               {0x02B0, 0x02FF},
	"combiningdiacriticalmarks":            {0x0300, 0x036F},
	"greek":                                {0x0370, 0x03FF},
	"greekandcoptic":                       {0x0370, 0x03FF},
	"cyrillic":                             {0x0400, 0x04FF},
	"cyrillicsupplement":                   {0x0500, 0x052F},
	"armenian":                             {0x0530, 0x058F},
	"hebrew":                               {0x0590, 0x05FF},
	"arabic":                               {0x0600, 0x06FF},
	"syriac":                               {0x0700, 0x074F},
	"thaana":                               {0x0780, 0x07BF},
	"devanagari":                           {0x0900, 0x097F},
	"bengali":                              {0x0980, 0x09FF},
	"gurmukhi":                             {0x0A00, 0x0A7F},
	"gujarati":                             {0x0A80, 0x0AFF},
	"oriya":                                {0x0B00, 0x0B7F},
	"tamil":                                {0x0B80, 0x0BFF},
	"telugu":                               {0x0C00, 0x0C7F},
	"kannada":                              {0x0C80, 0x0CFF},
	"malayalam":                            {0x0D00, 0x0D7F},
	"sinhala":                              {0x0D80, 0x0DFF},
	"thai":                                 {0x0E00, 0x0E7F},
	"lao":                                  {0x0E80, 0x0EFF},
	"tibetan":                              {0x0F00, 0x0FFF},
	"myanmar":                              {0x1000, 0x109F},
	"georgian":                             {0x10A0, 0x10FF},
	"hanguljamo":                           {0x1100, 0x11FF},
	"ethiopic":                             {0x1200, 0x137F},
	"cherokee":                             {0x13A0, 0x13FF},
	"unifiedcanadianaboriginalsyllabics":   {0x1400, 0x167F},
	"ogham":                                {0x1680, 0x169F},
	"runic":                                {0x16A0, 0x16FF},
	"khmer":                                {0x1780, 0x17FF},
	"mongolian":                            {0x1800, 0x18AF},
	"latinextendedadditional":              {0x1E00, 0x1EFF},
	"greekextended":                        {0x1F00, 0x1FFF},
	"generalpunctuation":                   {0x2000, 0x206F},
	"superscriptsandsubscripts":            {0x2070, 0x209F},
	"currencysymbols":                      {0x20A0, 0x20CF},
	"combiningmarksforsymbols":             {0x20D0, 0x20FF},
	"combiningdiacriticalmarksforsymbols":  {0x20D0, 0x20FF},
	"letterlikesymbols":                    {0x2100, 0x214F},
	"numberforms":                          {0x2150, 0x218F},
	"arrows":                               {0x2190, 0x21FF},
	"mathematicaloperators":                {0x2200, 0x22FF},
	"miscellaneoustechnical":               {0x2300, 0x23FF},
	"controlpictures":                      {0x2400, 0x243F},
	"opticalcharacterrecognition":          {0x2440, 0x245F},
	"enclosedalphanumerics":                {0x2460, 0x24FF},
	"boxdrawing":                           {0x2500, 0x257F},
	"blockelements":                        {0x2580, 0x259F},
	"geometricshapes":                      {0x25A0, 0x25FF},
	"miscellaneoussymbols":                 {0x2600, 0x26FF},
	"dingbats":                             {0x2700, 0x27BF},
	"braillepatterns":                      {0x2800, 0x28FF},
	"cjkradicalssupplement":                {0x2E80, 0x2EFF},
	"kangxiradicals":                       {0x2F00, 0x2FDF},
	"ideographicdescriptioncharacters":     {0x2FF0, 0x2FFF},
	"cjksymbolsandpunctuation":             {0x3000, 0x303F},
	"hiragana":                             {0x3040, 0x309F},
	"katakana":                             {0x30A0, 0x30FF},
	"bopomofo":                             {0x3100, 0x312F},
	"hangulcompatibilityjamo":              {0x3130, 0x318F},
	"kanbun":                               {0x3190, 0x319F},
	"bopomofoextended":                     {0x31A0, 0x31BF},
	"enclosedcjklettersandmonths":          {0x3200, 0x32FF},
	"cjkcompatibility":                     {0x3300, 0x33FF},
	"cjkunifiedideographsextensiona":       {0x3400, 0x4DBF},
	"cjkunifiedideographs":                 {0x4E00, 0x9FFF},
	"yisyllables":                          {0xA000, 0xA48F},
	"yiradicals":                           {0xA490, 0xA4CF},
	"hangulsyllables":                      {0xAC00, 0xD7AF},
	"cjkcompatibilityideographs":           {0xF900, 0xFAFF},
	"alphabeticpresentationforms":          {0xFB00, 0xFB4F},
	"arabicpresentationformsa":             {0xFB50, 0xFDFF},
	"combininghalfmarks":                   {0xFE20, 0xFE2F},
	"cjkcompatibilityforms":                {0xFE30, 0xFE4F},
	"smallformvariants":                    {0xFE50, 0xFE6F},
	"arabicpresentationformsb":             {0xFE70, 0xFEFF},
	"halfwidthandfullwidthforms":           {0xFF00, 0xFFEF},
	"specials":                             {0xFFF0, 0xFFFF},
	"olditalic":                            {0x10300, 0x1032F},
	"gothic":                               {0x10330, 0x1034F},
	"deseret":                              {0x10400, 0x1044F},
	"byzantinemusicalsymbols":              {0x1D000, 0x1D0FF},
	"musicalsymbols":                       {0x1D100, 0x1D1FF},
	"mathematicalalphanumericsymbols":      {0x1D400, 0x1D7FF},
	"cjkunifiedideographsextensionb":       {0x20000, 0x2A6DF},
	"cjkcompatibilityideographssupplement": {0x2F800, 0x2FA1F},
	"tags":                                 {0xE0000, 0xE007F},
}

// lookupBlock resolves a block name as written after "Is". Case and
// separator characters are ignored.
func lookupBlock(name string) (rune, rune, bool) {
	key := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(name))
	b, ok := blocks[key]
	return b.lo, b.hi, ok
}
