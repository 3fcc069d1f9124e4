package adapter

import (
	"fmt"
	"strconv"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// buildCarFlex renders up to maxFlexItems cars as a carousel, closing with a
// "view more" bubble pointing at the full result page. The alt text keeps
// notification previews useful on clients that cannot render flex.
func buildCarFlex(records []map[string]any, total int, moreURL string) *linebot.FlexMessage {
	bubbles := make([]*linebot.BubbleContainer, 0, maxFlexItems+1)
	for i, rec := range records {
		if i >= maxFlexItems {
			break
		}
		bubbles = append(bubbles, carBubble(rec))
	}
	bubbles = append(bubbles, viewMoreBubble(total, moreURL))

	alt := fmt.Sprintf("พบรถ %d คันที่ตรงกับเงื่อนไขค่ะ", total)
	return linebot.NewFlexMessage(alt, &linebot.CarouselContainer{
		Type:     linebot.FlexContainerTypeCarousel,
		Contents: bubbles,
	})
}

func carBubble(rec map[string]any) *linebot.BubbleContainer {
	title := fmt.Sprintf("%s %s", asString(rec, "brand"), asString(rec, "model"))
	detail := fmt.Sprintf("ปี %d • %s บาท", asInt(rec, "year"), formatBaht(asFloat(rec, "price")))

	bubble := &linebot.BubbleContainer{
		Type: linebot.FlexContainerTypeBubble,
		Body: &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.TextComponent{
					Type:   linebot.FlexComponentTypeText,
					Text:   title,
					Weight: linebot.FlexTextWeightTypeBold,
					Size:   linebot.FlexTextSizeTypeMd,
					Wrap:   true,
				},
				&linebot.TextComponent{
					Type: linebot.FlexComponentTypeText,
					Text: detail,
					Size: linebot.FlexTextSizeTypeSm,
					Wrap: true,
				},
			},
		},
	}

	if img := asString(rec, "image_url"); img != "" {
		bubble.Hero = &linebot.ImageComponent{
			Type:        linebot.FlexComponentTypeImage,
			URL:         img,
			Size:        linebot.FlexImageSizeTypeFull,
			AspectRatio: linebot.FlexImageAspectRatioType20to13,
			AspectMode:  linebot.FlexImageAspectModeTypeCover,
		}
	}
	if u := asString(rec, "url"); u != "" {
		bubble.Footer = &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.ButtonComponent{
					Type:   linebot.FlexComponentTypeButton,
					Style:  linebot.FlexButtonStyleTypePrimary,
					Action: linebot.NewURIAction("ดูรายละเอียด", u),
				},
			},
		}
	}
	return bubble
}

func viewMoreBubble(total int, moreURL string) *linebot.BubbleContainer {
	return &linebot.BubbleContainer{
		Type: linebot.FlexContainerTypeBubble,
		Body: &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.TextComponent{
					Type: linebot.FlexComponentTypeText,
					Text: fmt.Sprintf("ทั้งหมด %d คัน", total),
					Size: linebot.FlexTextSizeTypeMd,
					Wrap: true,
				},
			},
		},
		Footer: &linebot.BoxComponent{
			Type:   linebot.FlexComponentTypeBox,
			Layout: linebot.FlexBoxLayoutTypeVertical,
			Contents: []linebot.FlexComponent{
				&linebot.ButtonComponent{
					Type:   linebot.FlexComponentTypeButton,
					Style:  linebot.FlexButtonStyleTypeLink,
					Action: linebot.NewURIAction("ดูรถทั้งหมด", moreURL),
				},
			},
		},
	}
}

// formatBaht groups thousands the way the listing site shows prices.
func formatBaht(price float64) string {
	s := strconv.FormatInt(int64(price), 10)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

func asString(rec map[string]any, key string) string {
	if v, ok := rec[key].(string); ok {
		return v
	}
	return ""
}

func asFloat(rec map[string]any, key string) float64 {
	switch v := rec[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func asInt(rec map[string]any, key string) int {
	switch v := rec[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
