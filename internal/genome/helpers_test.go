package genome

func gene(typ, subtype, id byte, payload ...byte) Gene {
	return Gene{
		GeneHeader: GeneHeader{Type: typ, Subtype: subtype, ID: id, Flags: FlagMutable, Mutability: 128},
		Payload:    payload,
	}
}

func withSwitch(g Gene, age byte) Gene {
	g.SwitchOn = age
	return g
}

func withFlags(g Gene, flags Flags) Gene {
	g.Flags = flags
	return g
}

func withVariant(g Gene, variant byte) Gene {
	g.Variant = variant
	return g
}
