package audit

// Confusion holds binary confusion-matrix counts. Positive class is label 1.
type Confusion struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	TN int `json:"tn"`
	FN int `json:"fn"`
}

// Observe tallies one (actual, predicted) pair.
func (c *Confusion) Observe(label, predicted int) {
	switch {
	case label == 1 && predicted == 1:
		c.TP++
	case label == 0 && predicted == 1:
		c.FP++
	case label == 0 && predicted == 0:
		c.TN++
	default:
		c.FN++
	}
}

// Total returns the observation count.
func (c Confusion) Total() int {
	return c.TP + c.FP + c.TN + c.FN
}

// Positives returns the actual-positive count, the recall denominator.
func (c Confusion) Positives() int {
	return c.TP + c.FN
}

// Negatives returns the actual-negative count, the FPR denominator.
func (c Confusion) Negatives() int {
	return c.FP + c.TN
}

// Accuracy is (TP+TN)/total.
func (c Confusion) Accuracy() Rate {
	return Ratio(c.TP+c.TN, c.Total())
}

// Precision is TP/(TP+FP), undefined when nothing was predicted positive.
func (c Confusion) Precision() Rate {
	return Ratio(c.TP, c.TP+c.FP)
}

// Recall is TP/(TP+FN), undefined when the subgroup has no actual positives.
func (c Confusion) Recall() Rate {
	return Ratio(c.TP, c.Positives())
}

// F1 is the harmonic mean of precision and recall. Undefined when either
// side is undefined; zero when both are defined but zero.
func (c Confusion) F1() Rate {
	p := c.Precision()
	r := c.Recall()
	if !p.Defined || !r.Defined {
		return UndefinedRate()
	}
	if p.Value+r.Value == 0 {
		return DefinedRate(0)
	}
	return DefinedRate(2 * p.Value * r.Value / (p.Value + r.Value))
}
