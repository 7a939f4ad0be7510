package query

import "github.com/sells-group/leadgen-cli/internal/criteria"

// Fixed schema names on the company view.
const (
	// KeyColumn is the primary key used for exclusion sets.
	KeyColumn = "cnpj"

	// StatusColumn and ActiveStatus form the mandatory predicate every
	// compiled query carries.
	StatusColumn = "situacao_cadastral"
	ActiveStatus = "ATIVA"

	// DefaultView is the company view queried when no override is configured.
	DefaultView = "visao_empresa_agrupada_base"
)

// column maps each filter to the view column its predicates target, the
// parameter-name base its bound values use, and — for CNAE filters — the
// descriptive column that sentinel predicates target instead of the code
// column (missing classification is NULL/'' on the description, not the
// code).
type column struct {
	name        string
	paramBase   string
	sentinelCol string
}

var columns = map[criteria.Field]column{
	criteria.FieldTradeName:            {name: "nome_fantasia", paramBase: "nf"},
	criteria.FieldState:                {name: "uf", paramBase: "uf"},
	criteria.FieldCity:                 {name: "municipio", paramBase: "municipio"},
	criteria.FieldDistrict:             {name: "bairro", paramBase: "bairro"},
	criteria.FieldPrimaryCNAE:          {name: "cod_cnae_principal", paramBase: "cnae_p", sentinelCol: "cnae_principal"},
	criteria.FieldSecondaryCNAE:        {name: "cod_cnae_secundario", paramBase: "cnae_s", sentinelCol: "cnae_secundario"},
	criteria.FieldActivityStart:        {name: "data_inicio_atividade", paramBase: "data_inicio"},
	criteria.FieldCapital:              {name: "capital_social", paramBase: "capital"},
	criteria.FieldCompanySize:          {name: "porte_empresa", paramBase: "porte"},
	criteria.FieldLegalNature:          {name: "natureza_juridica", paramBase: "natureza"},
	criteria.FieldSimplesOptIn:         {name: "opcao_simples", paramBase: "simples"},
	criteria.FieldMEIOptIn:             {name: "opcao_mei", paramBase: "mei"},
	criteria.FieldAreaCode:             {name: "ddd1", paramBase: "ddd"},
	criteria.FieldPartnerName:          {name: "nomes_socios", paramBase: "socio"},
	criteria.FieldPartnerQualification: {name: "qualificacoes", paramBase: "qualificacao"},
	criteria.FieldPartnerAgeBracket:    {name: "faixas_etarias", paramBase: "faixa"},
}
