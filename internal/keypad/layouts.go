package keypad

// Simple is the four-function keypad.
func Simple() *Pad {
	return New([][]Key{
		{ins("7"), ins("8"), ins("9"), ins("/")},
		{ins("4"), ins("5"), ins("6"), ins("*")},
		{ins("1"), ins("2"), ins("3"), ins("-")},
		{ins("0"), ins("."), act("=", Equals), ins("+")},
		{act("C", Clear), act("⌫", Backspace), ins("("), ins(")")},
	})
}

// Scientific mirrors the scientific button panel.
func Scientific() *Pad {
	return New([][]Key{
		{insAs("sin", "sin("), insAs("cos", "cos("), insAs("tan", "tan("), insAs("sin⁻¹", "asin("), insAs("cos⁻¹", "acos("), insAs("tan⁻¹", "atan(")},
		{insAs("ln", "ln("), insAs("log", "log("), insAs("√", "√("), insAs("∛", "∛("), insAs("xʸ", "^"), insAs("eˣ", "e^(")},
		{insAs("π", "PI"), insAs("e", "E"), ins("|"), ins("!"), ins("%"), ins("RND")},
		{ins("7"), ins("8"), ins("9"), ins("/"), ins("("), ins(")")},
		{ins("4"), ins("5"), ins("6"), ins("*"), insAs("1/x", "1/("), ins(",")},
		{ins("1"), ins("2"), ins("3"), ins("-"), act("C", Clear), act("⌫", Backspace)},
		{ins("0"), ins("."), act("DEG", ToggleAngle), ins("+"), act("=", Equals)},
	})
}

// Programmer has the hex digits, bitwise operations and base switches.
func Programmer() *Pad {
	return New([][]Key{
		{{Label: "BIN", Text: "bin", Action: SetBase}, {Label: "OCT", Text: "oct", Action: SetBase}, {Label: "DEC", Text: "dec", Action: SetBase}, {Label: "HEX", Text: "hex", Action: SetBase}},
		{ins("A"), ins("B"), ins("C"), ins("D"), ins("E"), ins("F")},
		{ins("7"), ins("8"), ins("9"), {Label: "AND", Text: "AND", Action: BitOp}, {Label: "OR", Text: "OR", Action: BitOp}, {Label: "XOR", Text: "XOR", Action: BitOp}},
		{ins("4"), ins("5"), ins("6"), {Label: "NOT", Text: "NOT", Action: BitOp}, {Label: "<<", Text: "<<", Action: BitOp}, {Label: ">>", Text: ">>", Action: BitOp}},
		{ins("1"), ins("2"), ins("3"), ins("0"), act("CLR", Clear), act("=", Equals)},
	})
}
