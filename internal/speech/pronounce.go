package speech

import "strings"

var phonemeSounds = map[string]string{
	"/k/":  "kuh",
	"/c/":  "kuh",
	"/t/":  "tuh",
	"/p/":  "puh",
	"/b/":  "buh",
	"/d/":  "duh",
	"/g/":  "guh",
	"/f/":  "fuh",
	"/v/":  "vuh",
	"/s/":  "sss",
	"/z/":  "zzz",
	"/θ/":  "th",
	"/ð/":  "th",
	"/ʃ/":  "sh",
	"/ʒ/":  "zh",
	"/h/":  "huh",
	"/m/":  "mmm",
	"/n/":  "nnn",
	"/ŋ/":  "ng",
	"/l/":  "lll",
	"/r/":  "rrr",
	"/w/":  "wuh",
	"/j/":  "yuh",
	"/æ/":  "at",
	"/a/":  "ah",
	"/ɑ/":  "awe",
	"/e/":  "eh",
	"/ɛ/":  "eh",
	"/i/":  "ee",
	"/ɪ/":  "ih",
	"/o/":  "oh",
	"/ɔ/":  "awe",
	"/u/":  "oo",
	"/ʊ/":  "uh",
	"/ʌ/":  "uh",
	"/ɜr/": "er",
	"/ər/": "er",
}

// PhonemeRate is the default rate for isolated sounds.
const PhonemeRate = 0.5

// Pronounce maps an IPA phoneme to text a synthesizer can say.
// Slashes are optional. Unknown phonemes are returned unchanged.
func Pronounce(phoneme string) string {
	key := strings.TrimSpace(phoneme)
	if !strings.HasPrefix(key, "/") {
		key = "/" + key + "/"
	}
	if s, ok := phonemeSounds[key]; ok {
		return s
	}
	return phoneme
}

// Phoneme builds the utterance for an isolated sound.
func Phoneme(phoneme string) Utterance {
	opts := DefaultOptions()
	opts.Rate = PhonemeRate
	return Utterance{Text: Pronounce(phoneme), Options: opts}
}
