package ledger

import "github.com/PascmdeoMvd/Plataforma/internal/model"

// suggestions 协作领域 -> 默认板块，仅在没有显式分配时作为建议
var suggestions = map[string]model.SectorCode{
	"Organización": model.SectorOrganizacion,
	"Comunicación": model.SectorComunicacion,
	"Legal":        model.SectorLegal,
	"Tecnología":   model.SectorTecnologia,
	"Territorio":   model.SectorTerritorio,
	"Educación":    model.SectorEducacion,
}

// Suggest 按协作领域查建议板块（精确匹配）
func Suggest(area string) (model.SectorCode, bool) {
	code, ok := suggestions[area]
	return code, ok
}
