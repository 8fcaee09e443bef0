package i18n

var ptBRCatalog = &Catalog{
	locale: "pt-BR",
	messages: map[Code]string{
		// Match validation errors
		CodeMatchTokenNotSupported: "O token {{.Token}} não está na lista de tokens suportados",
		CodeMatchEntryFeeBelowMin:  "A taxa de entrada está abaixo do mínimo de {{.Minimum}}",
		CodeMatchInvalidMaxPlayers: "O número máximo de jogadores deve estar entre {{.Min}} e {{.Max}}",
		CodeMatchQuestionsEmpty:    "Uma partida precisa de pelo menos uma pergunta",
		CodeMatchQuestionDuplicate: "As perguntas de uma partida devem ser únicas",
		CodeMatchAnswerKeyMismatch: "O gabarito não corresponde às perguntas da partida",
		CodeMatchUnknownQuestion:   "A pergunta {{.Question}} não faz parte desta partida",
		CodeMatchAnswerOutOfRange:  "A resposta deve estar entre 0 e {{.Max}}",
		CodeMatchEntryFeeOverflow:  "Taxa de entrada vezes o máximo de jogadores excede o intervalo suportado",
		CodePlayerIdentityEmpty:    "A identidade do jogador não pode ser vazia",
		CodeTokenIdentifierEmpty:   "O identificador do token não pode ser vazio",
		CodeAmountNotPositive:      "O valor deve ser maior que zero",
		CodeFeePercentTooHigh:      "A taxa da plataforma não pode exceder {{.Max}} por cento",
		CodeMatchLimitInvalid:      "O limite de partidas por jogador deve ser pelo menos 1",
		CodeRequestInvalid:         "A requisição não pôde ser interpretada",

		// Match state errors
		CodeMatchStatusDisallowsOp:       "O status {{.Status}} da partida não permite {{.Operation}}",
		CodeMatchInvalidStatusTransition: "Não é possível mudar a partida de {{.FromStatus}} para {{.ToStatus}}",
		CodeMatchFull:                    "A partida já atingiu o número máximo de jogadores",
		CodeMatchNotFull:                 "A partida só pode começar com todas as vagas preenchidas",
		CodeMatchEscrowLocked:            "A custódia da partida já está travada",
		CodeMatchJoinDeadlinePassed:      "A janela de entrada desta partida já fechou",
		CodeMatchNotRefundable:           "A partida não é elegível para reembolso",
		CodeMatchAlreadyJoined:           "O jogador já está nesta partida",
		CodeMatchEnded:                   "A janela de respostas desta partida já fechou",
		CodeAnswerAlreadySubmitted:       "Já existe uma resposta registrada para esta pergunta",
		CodeClaimAlreadyProcessed:        "Os fundos desta partida já foram resgatados",
		CodeEnginePaused:                 "A arena está pausada",
		CodePlayerMatchLimitReached:      "O jogador já tem {{.Limit}} partidas abertas",

		// Authorization errors
		CodeAdminRequired:    "Acesso de administrador é necessário",
		CodePlayerNotInMatch: "O chamador não é jogador desta partida",
		CodePlayerNotWinner:  "O chamador não está entre os vencedores da partida",
		CodeGrantInvalid:     "A credencial de acesso é inválida",
		CodeGrantExpired:     "A credencial de acesso expirou",
		CodeGrantMismatch:    "O campo {{.Field}} da credencial de acesso não corresponde",

		// Funds errors
		CodeFundsInsufficientBalance:   "Saldo insuficiente para cobrir a taxa de entrada",
		CodeFundsInsufficientAllowance: "Permissão de gasto insuficiente para cobrir a taxa de entrada",
		CodeEscrowInsufficient:         "Fundos em custódia insuficientes para esta liberação",
		CodeFundsTransferFailed:        "A transferência do token falhou",

		// Storage errors
		CodeNotFound:            "O recurso solicitado não foi encontrado",
		CodeStorageFailure:      "O diário está temporariamente indisponível",
		CodeEventPayloadInvalid: "Um registro do diário não pôde ser decodificado",
	},
}
