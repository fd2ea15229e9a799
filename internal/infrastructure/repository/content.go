package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/textdao/indexer/internal/domain"
	"github.com/textdao/indexer/internal/infrastructure/database/models"
)

type TextRepository struct {
	db *gorm.DB
}

func NewTextRepository(db *gorm.DB) *TextRepository {
	return &TextRepository{db: db}
}

func (r *TextRepository) Create(ctx context.Context, text domain.Text) error {
	row := textToModel(text)
	return translate(r.db.WithContext(ctx).Create(&row).Error, "text")
}

func (r *TextRepository) Get(ctx context.Context, id string) (domain.Text, error) {
	var row models.Text
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		return domain.Text{}, translate(err, "text")
	}
	return textFromModel(row), nil
}

func (r *TextRepository) Put(ctx context.Context, text domain.Text) error {
	row := textToModel(text)
	return translate(r.db.WithContext(ctx).Save(&row).Error, "text")
}

// PutContent updates the resolved fields only while the row still carries
// the delivered content id, mirroring HeaderRepository.PutContent.
func (r *TextRepository) PutContent(ctx context.Context, id, cid string, title, body *string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Text{}).
		Where("id = ? AND metadata_cid = ?", id, cid).
		Updates(map[string]any{"title": title, "body": body})
	if result.Error != nil {
		return false, translate(result.Error, "text")
	}
	return result.RowsAffected > 0, nil
}

func (r *TextRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Text{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error, "text")
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "text"}
	}
	return nil
}

func (r *TextRepository) List(ctx context.Context) ([]domain.Text, error) {
	var rows []models.Text
	err := r.db.WithContext(ctx).Order("id").Find(&rows).Error
	if err != nil {
		return nil, translate(err, "text")
	}
	out := make([]domain.Text, len(rows))
	for i, row := range rows {
		out[i] = textFromModel(row)
	}
	return out, nil
}

type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) Create(ctx context.Context, member domain.Member) error {
	row := memberToModel(member)
	return translate(r.db.WithContext(ctx).Create(&row).Error, "member")
}

func (r *MemberRepository) Get(ctx context.Context, id string) (domain.Member, error) {
	var row models.Member
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		return domain.Member{}, translate(err, "member")
	}
	return memberFromModel(row), nil
}

func (r *MemberRepository) Put(ctx context.Context, member domain.Member) error {
	row := memberToModel(member)
	return translate(r.db.WithContext(ctx).Save(&row).Error, "member")
}

func (r *MemberRepository) PutContent(ctx context.Context, id, cid string, name, image, bio *string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("id = ? AND metadata_cid = ?", id, cid).
		Updates(map[string]any{"name": name, "image": image, "bio": bio})
	if result.Error != nil {
		return false, translate(result.Error, "member")
	}
	return result.RowsAffected > 0, nil
}

func (r *MemberRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Member{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error, "member")
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "member"}
	}
	return nil
}

func (r *MemberRepository) List(ctx context.Context) ([]domain.Member, error) {
	var rows []models.Member
	err := r.db.WithContext(ctx).Order("id").Find(&rows).Error
	if err != nil {
		return nil, translate(err, "member")
	}
	out := make([]domain.Member, len(rows))
	for i, row := range rows {
		out[i] = memberFromModel(row)
	}
	return out, nil
}

func textToModel(t domain.Text) models.Text {
	return models.Text{
		ID:          t.ID,
		MetadataCID: t.MetadataCID,
		Title:       t.Title,
		Body:        t.Body,
	}
}

func textFromModel(row models.Text) domain.Text {
	return domain.Text{
		ID:          row.ID,
		MetadataCID: row.MetadataCID,
		Title:       row.Title,
		Body:        row.Body,
	}
}

func memberToModel(m domain.Member) models.Member {
	return models.Member{
		ID:          m.ID,
		Addr:        m.Addr,
		MetadataCID: m.MetadataCID,
		Name:        m.Name,
		Image:       m.Image,
		Bio:         m.Bio,
	}
}

func memberFromModel(row models.Member) domain.Member {
	return domain.Member{
		ID:          row.ID,
		Addr:        row.Addr,
		MetadataCID: row.MetadataCID,
		Name:        row.Name,
		Image:       row.Image,
		Bio:         row.Bio,
	}
}
