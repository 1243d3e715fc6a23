package dto

type AlertaFilter struct {
	// "false" = only unseen, "true" = only seen, "" = all
	Visualizado string `form:"visualizado"`
	ProdutoID   uint   `form:"productId"`
}

type AlertaResponse struct {
	ID          uint   `json:"id"`
	ProdutoID   uint   `json:"productId"`
	ProdutoNome string `json:"productName,omitempty"`
	Mensagem    string `json:"message"`
	DataAlerta  string `json:"triggeredAt"`
	Visualizado bool   `json:"acknowledged"`
}

type MarcarTodosResponse struct {
	Atualizados int64 `json:"updated"`
}
