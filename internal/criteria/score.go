package criteria

// Weights is the fixed profile-score table: every active filter adds its
// weight, inactive filters add nothing. Status and the partner-name free
// text carry weight 0.
var Weights = map[Field]int{
	FieldTradeName:            10,
	FieldState:                5,
	FieldCity:                 5,
	FieldDistrict:             10,
	FieldPrimaryCNAE:          10,
	FieldSecondaryCNAE:        10,
	FieldActivityStart:        5,
	FieldCapital:              5,
	FieldCompanySize:          5,
	FieldLegalNature:          5,
	FieldSimplesOptIn:         5,
	FieldMEIOptIn:             5,
	FieldStatus:               0,
	FieldAreaCode:             10,
	FieldPartnerName:          0,
	FieldPartnerQualification: 5,
	FieldPartnerAgeBracket:    5,
}

// Score sums the weights of every active filter. Purely additive, so
// adding a filter never lowers the score.
func Score(c Criteria) int {
	score := 0
	for f, v := range c {
		if v == nil || !v.Active() {
			continue
		}
		score += Weights[f]
	}
	return score
}
