package http

import (
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/domain"
	"github.com/himanshu0633/mytestbuddiesbackend/internal/quiz/service"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/mailx"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/quizsdk"
	"github.com/himanshu0633/mytestbuddiesbackend/pkg/upix"
)

func userResponse(u domain.User) quizsdk.UserResponse {
	return quizsdk.UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Mobile:        u.Mobile,
		UserType:      string(u.UserType),
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
		Disabled:      u.Disabled,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
	}
}

func authResponse(msg string, u domain.User, t service.Token) quizsdk.AuthResponse {
	return quizsdk.AuthResponse{
		Message:   msg,
		Token:     t.AccessToken,
		TokenType: "Bearer",
		ExpiresIn: int(t.ExpiresIn.Seconds()),
		ExpiresAt: t.ExpiresAt,
		User:      userResponse(u),
	}
}

func deliveryResponse(d mailx.Diagnostics) *quizsdk.DeliveryResponse {
	return &quizsdk.DeliveryResponse{
		Sent:      d.Sent,
		MessageID: d.MessageID,
		Driver:    d.Driver,
		Error:     d.Error,
		Temporary: d.Temporary,
	}
}

func fieldResponse(f domain.Field) quizsdk.FieldResponse {
	return quizsdk.FieldResponse{
		ID:                     f.ID,
		Name:                   f.Name,
		Description:            f.Description,
		For:                    string(f.For),
		DefaultTimePerQuestion: f.DefaultTimePerQuestion,
		PricePaise:             f.PricePaise,
		Free:                   f.Free(),
		CreatedBy:              f.CreatedBy,
		CreatedAt:              f.CreatedAt,
		UpdatedAt:              f.UpdatedAt,
	}
}

func fieldResponses(fs []domain.Field) []quizsdk.FieldResponse {
	out := make([]quizsdk.FieldResponse, 0, len(fs))
	for _, f := range fs {
		out = append(out, fieldResponse(f))
	}
	return out
}

// questionResponses runs every question through service.ViewQuestion, the
// only place answers are redacted.
func questionResponses(qs []domain.Question, admin bool) []quizsdk.QuestionResponse {
	views := service.ViewQuestions(qs, admin)
	out := make([]quizsdk.QuestionResponse, 0, len(views))
	for _, v := range views {
		out = append(out, questionResponse(v))
	}
	return out
}

func questionResponse(v service.QuestionView) quizsdk.QuestionResponse {
	return quizsdk.QuestionResponse{
		ID:            v.ID,
		FieldID:       v.FieldID,
		Type:          v.Type,
		Text:          v.Text,
		Options:       v.Options,
		CorrectAnswer: v.CorrectAnswer,
		Solution:      v.Solution,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func progressResponse(p domain.Progress) quizsdk.ProgressResponse {
	answered := make([]quizsdk.AnsweredResponse, 0, len(p.Entries))
	for _, e := range p.Entries {
		answered = append(answered, quizsdk.AnsweredResponse{
			QuestionID: e.QuestionID,
			Answer:     e.Answer,
			IsCorrect:  e.IsCorrect,
			Batch:      e.Batch,
			AnsweredAt: e.AnsweredAt,
		})
	}
	return quizsdk.ProgressResponse{
		ID:                p.ID,
		UserID:            p.UserID,
		FieldID:           p.FieldID,
		QuestionsAnswered: answered,
		TotalCorrect:      p.TotalCorrect,
		TotalAnswered:     p.TotalAnswered,
		Submissions:       p.Submissions,
		UpdatedAt:         p.UpdatedAt,
	}
}

func paymentResponse(p domain.Payment) quizsdk.PaymentResponse {
	return quizsdk.PaymentResponse{
		ID:            p.ID,
		OrderID:       p.OrderID,
		UserID:        p.UserID,
		FieldID:       p.FieldID,
		Method:        p.Method,
		AmountPaise:   p.AmountPaise,
		Amount:        upix.FormatRupees(p.AmountPaise),
		UTR:           p.UTR,
		ScreenshotKey: p.ScreenshotKey,
		Status:        string(p.Status),
		ReviewedBy:    p.ReviewedBy,
		ReviewedAt:    p.ReviewedAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func paymentResponses(ps []domain.Payment) []quizsdk.PaymentResponse {
	out := make([]quizsdk.PaymentResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, paymentResponse(p))
	}
	return out
}
