package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"concierge/models"

	"go.uber.org/zap"
)

const (
	DefaultFAQTopK = 4

	// NoInfoReply is returned when nothing relevant was retrieved.
	NoInfoReply = "Bu konuda bilgim yok."

	faqSystemPrompt = "Sen Cullinan Belek oteli hakkında bir uzmansın. Sana SAĞLANAN NUMARALANDIRILMIŞ KAYNAKLARI kullanarak kullanıcının sorusunu yanıtla. " +
		"Kaynaklarda hem doğal dil metinleri hem de yapısal veriler (kapasite, metrekare, yatak tipleri vb.) bulunabilir. " +
		"Özellikle sayısal veya kesin bilgi istenen sorularda metinden ziyade YAPISAL VERİLERİ temel al. " +
		"Cevabında ilgili kaynak numaralarını köşeli parantezle belirt (örn. [1]). " +
		"Eğer kaynaklarda cevap yoksa 'Bu konuda bilgim yok.' de."
)

// FAQAnswerer answers hotel questions from retrieved fact chunks.
type FAQAnswerer struct {
	embedder  Embedder
	index     VectorIndex
	generator Generator
	k         int
	logger    *zap.Logger
}

func NewFAQAnswerer(embedder Embedder, index VectorIndex, generator Generator, k int, logger *zap.Logger) *FAQAnswerer {
	if k <= 0 {
		k = DefaultFAQTopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FAQAnswerer{embedder: embedder, index: index, generator: generator, k: k, logger: logger}
}

func (a *FAQAnswerer) Answer(ctx context.Context, intent models.Intent, question string) (string, error) {
	q := strings.TrimSpace(question)
	vec, err := a.embedder.Embed(ctx, q)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	filter := ExtractFilter(q)
	hits, err := a.index.Search(ctx, vec, a.k, filter)
	if err != nil {
		return "", fmt.Errorf("search facts: %w", err)
	}
	if len(hits) == 0 && filter != nil {
		a.logger.Info("No facts matched filter, retrying unfiltered",
			zap.Stringer("intent", intent), zap.Any("filter", filter))
		if hits, err = a.index.Search(ctx, vec, a.k, nil); err != nil {
			return "", fmt.Errorf("search facts: %w", err)
		}
	}
	if len(hits) == 0 {
		return NoInfoReply, nil
	}

	prompt := fmt.Sprintf("Soru: %s\n\n--- KAYNAKLAR ---\n%s\n\nCevabın:", q, BuildContext(hits))
	reply, err := a.generator.Generate(ctx, faqSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	if reply == "" {
		return NoInfoReply, nil
	}
	return reply, nil
}

type bedOption struct {
	Name string `json:"opsiyon_adi"`
	Beds []struct {
		Count json.Number `json:"adet"`
		Size  string      `json:"boyut"`
	} `json:"yataklar"`
}

// BuildContext renders hits as numbered source blocks for the prompt.
func BuildContext(hits []Match) string {
	parts := make([]string, 0, len(hits))
	for i, h := range hits {
		meta := h.Metadata
		room, _ := meta[FieldRoomType].(string)
		if room == "" {
			room = "Genel Bilgi"
		}

		capTxt := "Kapasite belirsiz"
		if a, ok := meta[FieldCapAdult]; ok && a != nil {
			capTxt = fmt.Sprintf("%v yetişkin", a)
			if c, ok := number(meta[FieldCapChild]); ok && c > 0 {
				capTxt += fmt.Sprintf(" + %v çocuk", c)
			}
		}

		bedTxt := ""
		if raw, _ := meta[FieldBedOptions].(string); raw != "" {
			bedTxt = describeBeds(raw)
		}

		source, _ := meta[FieldSourceDoc].(string)
		if source == "" {
			source = "?"
		}

		parts = append(parts, fmt.Sprintf("[%d] Oda Tipi: %s | Kapasite: %s\n    Metin: %s\n    Yataklar: %s\n    (Kaynak: %s)",
			i+1, room, capTxt, h.Text, bedTxt, source))
	}
	return strings.Join(parts, "\n\n")
}

func describeBeds(raw string) string {
	var opts []bedOption
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return "Yatak detayı okunamadı"
	}
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		beds := make([]string, 0, len(o.Beds))
		for _, b := range o.Beds {
			beds = append(beds, fmt.Sprintf("%s×%s", b.Count, b.Size))
		}
		out = append(out, o.Name+": "+strings.Join(beds, ", "))
	}
	return strings.Join(out, " / ")
}
