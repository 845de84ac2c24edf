package domain

// Deep copies for cached payloads. Callers of the process-wide caches each
// receive an independent copy so nobody can mutate shared state.

func (p *MetaPayload) Clone() *MetaPayload {
	if p == nil {
		return nil
	}
	out := *p
	out.HeroStats = make([]HeroMetaStat, len(p.HeroStats))
	for i, hs := range p.HeroStats {
		hs.HeroIconURL = cloneStringPtr(hs.HeroIconURL)
		hs.BanRate = cloneFloatPtr(hs.BanRate)
		out.HeroStats[i] = hs
	}
	out.ItemStats = make([]ItemMetaStat, len(p.ItemStats))
	for i, is := range p.ItemStats {
		is.HeroIconURL = cloneStringPtr(is.HeroIconURL)
		is.ItemIconURL = cloneStringPtr(is.ItemIconURL)
		out.ItemStats[i] = is
	}
	out.Notes = append([]string(nil), p.Notes...)
	return &out
}

func cloneStringPtr(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloatPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
