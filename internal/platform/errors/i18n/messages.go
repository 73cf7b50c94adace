package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
const (
	CodeUnknown               = "UNKNOWN"
	CodeRequestInvalid        = "REQUEST_INVALID"
	CodeDiceInvalidExpression = "DICE_INVALID_EXPRESSION"
	CodeDiceModeUnsupported   = "DICE_MODE_UNSUPPORTED"
	CodeDiceInvalidMode       = "DICE_INVALID_MODE"
	CodeDiceResourceLimit     = "DICE_RESOURCE_LIMIT"
	CodeDiceSourceFailure     = "DICE_SOURCE_FAILURE"
)

// localeMessages holds message templates keyed by locale and code. Templates
// read error metadata, e.g. {{.limit}}.
var localeMessages = map[string]map[Code]string{
	"en-US": {
		CodeUnknown:               "An unexpected error occurred",
		CodeRequestInvalid:        "The request is invalid: {{.reason}}",
		CodeDiceInvalidExpression: "Invalid dice expression: {{.reason}}",
		CodeDiceModeUnsupported:   "Advantage and disadvantage need exactly one dice group",
		CodeDiceInvalidMode:       "Unsupported roll mode {{.mode}}",
		CodeDiceResourceLimit:     "Dice {{.limit}} {{.actual}} exceeds the limit of {{.max}}",
		CodeDiceSourceFailure:     "The dice could not be rolled, please try again",
	},
	"pt-BR": {
		CodeUnknown:               "Ocorreu um erro inesperado",
		CodeRequestInvalid:        "A requisição é inválida: {{.reason}}",
		CodeDiceInvalidExpression: "Expressão de dados inválida: {{.reason}}",
		CodeDiceModeUnsupported:   "Vantagem e desvantagem exigem exatamente um grupo de dados",
		CodeDiceInvalidMode:       "Modo de rolagem não suportado: {{.mode}}",
		CodeDiceResourceLimit:     "O valor {{.actual}} para {{.limit}} excede o limite de {{.max}}",
		CodeDiceSourceFailure:     "Não foi possível rolar os dados, tente novamente",
	},
}
