package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultModel  = "gemini-2.0-flash"
	clientTimeout = 30 * time.Second
)

// Canned answers used whenever the model call fails for any reason.
// The terminal must keep working without network access or a key.
const (
	fallbackAnalysisTH = "ไม่สามารถเชื่อมต่อระบบวิเคราะห์ได้ในขณะนี้ คำแนะนำเบื้องต้น: " +
		"ตรวจสอบระบบไฟฟ้าและจุดเชื่อมต่อ ตรวจระดับน้ำมันหล่อลื่น " +
		"และหยุดเครื่องทันทีหากพบเสียงหรือกลิ่นผิดปกติ จากนั้นแจ้งวิศวกรผู้รับผิดชอบ"
	fallbackReportTH = "ไม่สามารถสร้างรายงานอัตโนมัติได้ในขณะนี้ " +
		"โปรดตรวจสอบข้อมูลประสิทธิภาพจากหน้าสรุปเครื่องจักรโดยตรง"

	fallbackAnalysisEN = "The analysis service is unavailable right now. Initial guidance: " +
		"check the electrical system and connection points, check lubricant levels, " +
		"stop the machine immediately on any abnormal noise or smell, then notify the responsible engineer."
	fallbackReportEN = "The automatic report is unavailable right now. " +
		"Please review the efficiency figures directly on the machine summary page."
)

// Service calls the Gemini generateContent endpoint with a single-turn
// prompt. Every failure path returns a static fallback in the current
// interface language instead of an error; maintenance advice degrades,
// it never blocks.
type Service struct {
	apiKey   string
	baseURL  string
	model    string
	client   *http.Client
	language func() string
}

func NewService(apiKey, baseURL string, language func() string) *Service {
	if language == nil {
		language = func() string { return "TH" }
	}
	return &Service{
		apiKey:   apiKey,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		model:    defaultModel,
		client:   &http.Client{Timeout: clientTimeout},
		language: language,
	}
}

func (s *Service) fallbacks() (analysis, report string) {
	if s.language() == "EN" {
		return fallbackAnalysisEN, fallbackReportEN
	}
	return fallbackAnalysisTH, fallbackReportTH
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// AnalyzeIssue asks for first-response guidance on a reported machine
// problem.
func (s *Service) AnalyzeIssue(ctx context.Context, problem, machineModel string) string {
	prompt := fmt.Sprintf(
		"คุณคือวิศวกรซ่อมบำรุงอาวุโสในโรงงาน เครื่องจักรรุ่น %s มีอาการ: %s "+
			"วิเคราะห์สาเหตุที่เป็นไปได้และแนะนำขั้นตอนการแก้ไขเบื้องต้นเป็นข้อ ๆ ตอบเป็นภาษาไทย",
		machineModel, problem)
	text, err := s.generate(ctx, prompt)
	if err != nil {
		analysis, _ := s.fallbacks()
		return analysis
	}
	return text
}

// GenerateEfficiencyReport summarizes fleet efficiency metrics into a
// short management report.
func (s *Service) GenerateEfficiencyReport(ctx context.Context, metrics string) string {
	prompt := fmt.Sprintf(
		"คุณคือผู้จัดการฝ่ายซ่อมบำรุง สรุปรายงานประสิทธิภาพเครื่องจักรต่อไปนี้ให้ผู้บริหาร "+
			"พร้อมข้อเสนอแนะสั้น ๆ ตอบเป็นภาษาไทย ข้อมูล: %s",
		metrics)
	text, err := s.generate(ctx, prompt)
	if err != nil {
		_, report := s.fallbacks()
		return report
	}
	return text
}

func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("no api key configured")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generateContent: status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generateContent: empty response")
	}
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("generateContent: empty text")
	}
	return text, nil
}
