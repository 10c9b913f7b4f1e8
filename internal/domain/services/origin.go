package services

import (
	"strings"

	"github.com/omishoninjp-sys/gotoshopee/internal/domain/models"
)

// Ключевые слова для поиска атрибута "страна происхождения" в схеме категории
var originKeywords = []string{"country", "origin", "產地", "原產地"}

// Подстроки, по которым выбирается значение "Япония"
var originValueMarkers = []string{"japan", "日本"}

// Значение, передаваемое свободным текстом, когда подходящий value_id не найден
const originFallbackValueName = "日本"

// FindOriginAttribute ищет атрибут страны происхождения в списке атрибутов
// категории. Сканирование идет в порядке списка; совпадение ищется по
// объединению оригинального и отображаемого имени без учета регистра.
// Если подходящее значение не найдено, возвращается атрибут с нулевым
// value_id: вызывающий не должен считать непустой результат гарантией
// выбираемого значения
func FindOriginAttribute(attributes []models.Attribute) *models.ResolvedAttribute {
	for _, attr := range attributes {
		name := strings.ToLower(attr.OriginalName + " " + attr.DisplayName)
		if !containsAny(name, originKeywords) {
			continue
		}

		var valueID int64
		for _, value := range attr.Values {
			valueName := strings.ToLower(value.OriginalName + " " + value.DisplayName)
			if containsAny(valueName, originValueMarkers) {
				valueID = value.ValueID
				break
			}
		}

		return &models.ResolvedAttribute{
			AttributeID:       attr.AttributeID,
			ValueID:           valueID,
			OriginalValueName: originFallbackValueName,
		}
	}

	return nil
}

func containsAny(s string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
