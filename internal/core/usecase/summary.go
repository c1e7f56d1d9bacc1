package usecase

import (
	"fmt"
	"strings"

	"github.com/hansung-sw-capstone-2025-2/2025-8-A-AI/internal/core/domain"
)

// fallbackSummary composes a one-line profile for panels whose AI-generated
// summary is not ready yet.
func fallbackSummary(panel domain.Panel) string {
	var parts []string

	gender := localizedGender(panel.Gender)
	switch {
	case panel.Age != nil && gender != "":
		parts = append(parts, fmt.Sprintf("%d세 %s", *panel.Age, gender))
	case panel.Age != nil:
		parts = append(parts, fmt.Sprintf("%d세", *panel.Age))
	case gender != "":
		parts = append(parts, gender)
	}

	if panel.Residence != "" {
		parts = append(parts, panel.Residence+" 거주")
	}
	if panel.Occupation != "" {
		parts = append(parts, panel.Occupation)
	}
	if panel.MaritalStatus != "" {
		parts = append(parts, panel.MaritalStatus)
	}

	if len(parts) == 0 {
		return "기본 정보만 등록된 패널입니다 (AI 프로필 생성 전)"
	}
	return strings.Join(parts, ", ") + " (AI 프로필 생성 전)"
}

func localizedGender(gender string) string {
	switch gender {
	case "MALE":
		return "남성"
	case "FEMALE":
		return "여성"
	default:
		return gender
	}
}
