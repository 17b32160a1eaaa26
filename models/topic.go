package models

import "gorm.io/gorm"

// Topic is a node in the subject-matter tree. ParentTopicID is nil for
// roots; the parent-pointer graph stays a forest because topics are only
// ever created under an existing parent (or none).
type Topic struct {
	gorm.Model
	PublicID      string  `gorm:"size:100;uniqueIndex"`
	Name          string  `gorm:"not null;size:300"`
	Overview      *string `gorm:"default:null"`
	ParentTopicID *uint   `gorm:"index;default:null"`

	SubTopics []Topic `gorm:"foreignKey:ParentTopicID"`
	Cards     []Card  `gorm:"foreignKey:TopicID"`

	CardsStatus GenerationStatus `gorm:"not null;size:20;default:NOT_STARTED"`
}

func (t *Topic) BeforeCreate(tx *gorm.DB) error {
	if t.CardsStatus == "" {
		t.CardsStatus = GenerationNotStarted
	}
	return nil
}

// DescendantTopicIDs walks the parent-pointer tree breadth-first and
// returns every topic ID under rootID, including rootID itself.
func DescendantTopicIDs(db *gorm.DB, rootID uint) ([]uint, error) {
	all := []uint{rootID}
	queue := []uint{rootID}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		var childIDs []uint
		if err := db.Model(&Topic{}).Where("parent_topic_id = ?", currentID).Pluck("id", &childIDs).Error; err != nil {
			return nil, err
		}
		all = append(all, childIDs...)
		queue = append(queue, childIDs...)
	}

	return all, nil
}

// AncestorTopicIDs traces upward from childID, collecting parent IDs in
// order (closest first). The child itself is not included.
func AncestorTopicIDs(db *gorm.DB, childID uint) ([]uint, error) {
	ancestors := []uint{}
	currentID := childID

	for {
		var topic Topic
		if err := db.Select("parent_topic_id").First(&topic, currentID).Error; err != nil {
			return nil, err
		}
		if topic.ParentTopicID == nil {
			break
		}
		ancestors = append(ancestors, *topic.ParentTopicID)
		currentID = *topic.ParentTopicID
	}

	return ancestors, nil
}

// LeafTopics returns the topics in rootID's subtree that have no children.
func LeafTopics(db *gorm.DB, rootID uint) ([]Topic, error) {
	ids, err := DescendantTopicIDs(db, rootID)
	if err != nil {
		return nil, err
	}

	var leaves []Topic
	err = db.Where("id IN ?", ids).
		Where("NOT EXISTS (SELECT 1 FROM topics children WHERE children.parent_topic_id = topics.id AND children.deleted_at IS NULL)").
		Find(&leaves).Error
	if err != nil {
		return nil, err
	}
	return leaves, nil
}
