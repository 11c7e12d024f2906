package model

// SectorCode 组织板块代码（封闭集合）
type SectorCode string

const (
	SectorOrganizacion SectorCode = "A"
	SectorComunicacion SectorCode = "B"
	SectorLegal        SectorCode = "C"
	SectorTecnologia   SectorCode = "D"
	SectorTerritorio   SectorCode = "E"
	SectorEducacion    SectorCode = "F"
)

// UnassignedLabel 未分配时的展示文本
const UnassignedLabel = "🔘 No asignado"

// Sector 板块定义
type Sector struct {
	Code  SectorCode `json:"code"`
	Label string     `json:"label"`
	Color string     `json:"color"`
}

// sectors 板块目录，顺序即展示/统计顺序
var sectors = []Sector{
	{Code: SectorOrganizacion, Label: "🛠️ Organización", Color: "#f4cccc"},
	{Code: SectorComunicacion, Label: "📣 Comunicación", Color: "#d9ead3"},
	{Code: SectorLegal, Label: "⚖️ Legal", Color: "#cfe2f3"},
	{Code: SectorTecnologia, Label: "💻 Tecnología", Color: "#fff2cc"},
	{Code: SectorTerritorio, Label: "🌍 Territorio", Color: "#ead1dc"},
	{Code: SectorEducacion, Label: "📚 Educación", Color: "#d0e0e3"},
}

// Sectors 返回板块目录副本
func Sectors() []Sector {
	out := make([]Sector, len(sectors))
	copy(out, sectors)
	return out
}

// SectorCodes 返回全部板块代码（目录顺序）
func SectorCodes() []SectorCode {
	out := make([]SectorCode, len(sectors))
	for i, s := range sectors {
		out[i] = s.Code
	}
	return out
}

// LookupSector 按代码查找板块
func LookupSector(code SectorCode) (Sector, bool) {
	for _, s := range sectors {
		if s.Code == code {
			return s, true
		}
	}
	return Sector{}, false
}

// Valid 是否属于板块目录
func (c SectorCode) Valid() bool {
	_, ok := LookupSector(c)
	return ok
}

// Label 展示文本；不在目录内（含空值）返回未分配文本
func (c SectorCode) Label() string {
	if s, ok := LookupSector(c); ok {
		return s.Label
	}
	return UnassignedLabel
}
