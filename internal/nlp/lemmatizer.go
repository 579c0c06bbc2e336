package nlp

import "strings"

// lemmaExceptions maps irregular inflections to their base form. Words that the suffix
// rules would damage map to themselves.
var lemmaExceptions = map[string]string{
	"am": "be", "is": "be", "are": "be", "was": "be", "were": "be", "been": "be", "being": "be", "'m": "be", "'re": "be",
	"has": "have", "had": "have", "having": "have", "'ve": "have",
	"does": "do", "did": "do", "done": "do", "doing": "do",
	"goes": "go", "went": "go", "gone": "go",
	"n't": "not", "n’t": "not", "'ll": "will", "’ll": "will",
	"ran": "run", "sat": "sit", "saw": "see", "seen": "see", "took": "take", "taken": "take",
	"made": "make", "came": "come", "got": "get", "gotten": "get", "gave": "give", "given": "give",
	"knew": "know", "known": "know", "thought": "think", "told": "tell", "said": "say", "says": "say",
	"found": "find", "left": "leave", "felt": "feel", "kept": "keep", "began": "begin", "begun": "begin",
	"brought": "bring", "bought": "buy", "built": "build", "held": "hold", "wrote": "write", "written": "write",
	"stood": "stand", "heard": "hear", "meant": "mean", "met": "meet", "paid": "pay", "sent": "send",
	"spent": "spend", "fell": "fall", "fallen": "fall", "led": "lead", "lost": "lose", "won": "win",
	"ate": "eat", "eaten": "eat", "drove": "drive", "driven": "drive", "spoke": "speak", "spoken": "speak",
	"chose": "choose", "chosen": "choose", "broke": "break", "broken": "break", "flew": "fly", "flown": "fly",
	"grew": "grow", "grown": "grow", "threw": "throw", "thrown": "throw", "drew": "draw", "drawn": "draw",
	"sang": "sing", "sung": "sing", "swam": "swim", "rode": "ride", "rose": "rise", "woke": "wake",
	"wore": "wear", "sold": "sell", "caught": "catch", "taught": "teach", "fought": "fight", "sought": "seek",
	"became": "become", "understood": "understand", "forgot": "forget", "forgotten": "forget",
	"hid": "hide", "hidden": "hide", "shook": "shake", "shaken": "shake", "fed": "feed", "fled": "flee",
	"slept": "sleep", "swept": "sweep", "wept": "weep", "dealt": "deal", "dug": "dig", "hung": "hang",
	"struck": "strike", "stuck": "stick", "spun": "spin", "lay": "lie", "lain": "lie", "lying": "lie",
	"dying": "die", "died": "die", "tied": "tie", "lied": "lie", "used": "use", "married": "marry",
	"men": "man", "women": "woman", "children": "child", "mice": "mouse", "feet": "foot", "teeth": "tooth",
	"geese": "goose", "people": "person", "oxen": "ox", "lives": "life", "wives": "wife", "knives": "knife",
	"wolves": "wolf", "halves": "half", "leaves": "leaf",
	"better": "good", "best": "good", "worse": "bad", "worst": "bad",
	"news": "news", "always": "always", "perhaps": "perhaps", "series": "series", "species": "species",
	"physics": "physics", "mathematics": "mathematics", "lens": "lens", "gas": "gas", "this": "this",
	"thus": "thus", "plus": "plus", "during": "during", "nothing": "nothing", "something": "something",
	"anything": "anything", "everything": "everything", "morning": "morning", "evening": "evening",
	"ceiling": "ceiling", "wedding": "wedding", "its": "its", "ours": "ours", "yours": "yours",
	"hers": "hers", "theirs": "theirs", "whereas": "whereas", "towards": "towards", "afterwards": "afterwards",
	"besides": "besides", "sometimes": "sometimes", "hundred": "hundred", "united": "unite",
	"ourselves": "ourselves", "themselves": "themselves", "yourselves": "yourselves",
}

// lemmatizeTokens sets Lemma on every token. Non-words keep their lowercased text.
func lemmatizeTokens(doc *Doc) {
	for i := range doc.Tokens {
		tok := &doc.Tokens[i]
		if tok.Kind != KindWord {
			tok.Lemma = tok.Lower
			continue
		}
		tok.Lemma = lemma(tok.Lower)
	}
}

// lemma returns the base form of a lowercased word: the exception table first, then
// inflectional suffix rules for plurals, -ed and -ing.
func lemma(w string) string {
	if l, ok := lemmaExceptions[w]; ok {
		return l
	}
	if len(w) <= 3 || !isASCIILower(w) {
		return w
	}
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case hasAnySuffix(w, "sses", "shes", "ches", "xes", "zzes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !hasAnySuffix(w, "ss", "us", "is"):
		return w[:len(w)-1]
	case strings.HasSuffix(w, "eed"):
		return w
	case strings.HasSuffix(w, "ied") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ing"):
		return restoreStem(w[:len(w)-3], w)
	case strings.HasSuffix(w, "ed"):
		return restoreStem(w[:len(w)-2], w)
	}
	return w
}

// restoreStem undoes the spelling changes of -ed/-ing: doubled consonants are undoubled and
// a silent e is put back on short consonant-vowel-consonant stems.
func restoreStem(stem, word string) string {
	if len(stem) < 3 || !hasVowel(stem) {
		return word
	}
	last := stem[len(stem)-1]
	switch {
	case endsDoubleConsonant(stem) && last != 'l' && last != 's' && last != 'z':
		return stem[:len(stem)-1]
	case hasAnySuffix(stem, "at", "bl", "iz") && !vowelPairAt(stem):
		return stem + "e"
	case measure(stem) == 1 && endsCVC(stem):
		return stem + "e"
	}
	return stem
}

// vowelPairAt reports stems such as "treat" or "float" whose base form ends in the bare
// "-eat"/"-oat". "creat" is the exception.
func vowelPairAt(stem string) bool {
	return hasAnySuffix(stem, "eat", "oat") && !strings.HasSuffix(stem, "creat")
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func isASCIILower(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

func isConsonant(word string, i int) bool {
	switch word[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		if i == 0 {
			return true
		}
		return !isConsonant(word, i-1)
	}
	return true
}

// measure counts vowel-consonant sequences, the m of the Porter algorithm.
func measure(word string) int {
	n := len(word)
	m := 0
	i := 0
	for i < n && isConsonant(word, i) {
		i++
	}
	for i < n {
		for i < n && !isConsonant(word, i) {
			i++
		}
		if i >= n {
			break
		}
		m++
		for i < n && isConsonant(word, i) {
			i++
		}
	}
	return m
}

func hasVowel(word string) bool {
	for i := 0; i < len(word); i++ {
		if !isConsonant(word, i) {
			return true
		}
	}
	return false
}

func endsDoubleConsonant(word string) bool {
	n := len(word)
	if n < 2 {
		return false
	}
	return word[n-1] == word[n-2] && isConsonant(word, n-1)
}

func endsCVC(word string) bool {
	n := len(word)
	if n < 3 {
		return false
	}
	if !isConsonant(word, n-3) || isConsonant(word, n-2) || !isConsonant(word, n-1) {
		return false
	}
	c := word[n-1]
	return c != 'w' && c != 'x' && c != 'y'
}
