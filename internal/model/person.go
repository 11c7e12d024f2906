package model

import "time"

// 上传表格中的标准列名（规范化之后：去空格、小写、NFC）
const (
	ColFullName     = "nombre_completo"
	ColDepartment   = "departamento"
	ColCity         = "ciudad"
	ColInterest     = "interes_sumarse_como"
	ColArea         = "área_colaboración"
	ColAvailability = "disponibilidad_horaria"
	ColMode         = "modalidad_participación"
	ColComment      = "comentarios"

	ColSector      = "sector"
	ColSectorLabel = "sector_descriptivo"
	ColLastContact = "ultima_comunicacion"
	ColAlertKind   = "tipo_alerta"
	ColAlertDays   = "dias"
)

// RequiredColumns 下游组件依赖的必需列，顺序即导出顺序
var RequiredColumns = []string{
	ColFullName,
	ColDepartment,
	ColCity,
	ColInterest,
	ColArea,
	ColAvailability,
	ColMode,
	ColComment,
}

// PersonRecord 报名表中的一行（一个人）
// FullName 作为标识；同名记录在台账中共享同一条目
type PersonRecord struct {
	FullName     string `json:"nombre_completo"`
	Department   string `json:"departamento"`
	City         string `json:"ciudad"`
	Interest     string `json:"interes_sumarse_como"`
	Area         string `json:"area_colaboracion"`
	Availability string `json:"disponibilidad_horaria"`
	Mode         string `json:"modalidad_participacion"`
	Comment      string `json:"comentarios"`
}

// Values 按 RequiredColumns 顺序返回字段值
func (p PersonRecord) Values() []string {
	return []string{
		p.FullName,
		p.Department,
		p.City,
		p.Interest,
		p.Area,
		p.Availability,
		p.Mode,
		p.Comment,
	}
}

// Dataset 当前加载的数据集描述
type Dataset struct {
	ID       string    `json:"id"`
	FileName string    `json:"fileName"`
	Format   string    `json:"format"`
	Rows     int       `json:"rows"`
	LoadedAt time.Time `json:"loadedAt"`
}
