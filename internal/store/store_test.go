package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	api "github.com/emizp/IFCAtom/api/v1alpha1"
	"github.com/emizp/IFCAtom/internal/config"
	"github.com/emizp/IFCAtom/internal/registry"
	"github.com/emizp/IFCAtom/internal/store"
)

func TestStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Store Suite")
}

var _ = Describe("job store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		cfg := &config.Config{DataDir: GinkgoT().TempDir()}
		db, err := store.InitDB(cfg)
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		Expect(s.InitialMigration()).To(Succeed())
		gormdb = db
	})

	AfterAll(func() {
		Expect(s.Close()).To(Succeed())
	})

	AfterEach(func() {
		Expect(s.Job().DeleteAll(context.TODO())).To(Succeed())
	})

	trackedJob := func(position int) registry.Job {
		return registry.Job{
			Id:       uuid.NewString(),
			Filename: fmt.Sprintf("model_%d.ifc", position),
			Status:   api.JobStatusProcessing,
			Selected: true,
			Category: registry.CategoryUnspecified,
			Position: position,
		}
	}

	Context("upsert", func() {
		It("creates a row on first write", func() {
			job := trackedJob(0)
			Expect(s.Job().Upsert(context.TODO(), job)).To(Succeed())

			stored, err := s.Job().Get(context.TODO(), job.Id)
			Expect(err).To(BeNil())
			Expect(stored.Filename).To(Equal(job.Filename))
			Expect(stored.Status).To(Equal(api.JobStatusProcessing))
			Expect(stored.Selected).To(BeTrue())
		})

		It("overwrites the row on later writes of the same id", func() {
			job := trackedJob(0)
			Expect(s.Job().Upsert(context.TODO(), job)).To(Succeed())

			job.Status = api.JobStatusCompleted
			job.Schema = "IFC4"
			job.Result = &api.ResultPaths{CsvPath: "static/parsed_data/a.csv", JsonPath: "static/parsed_data/a.json"}
			Expect(s.Job().Upsert(context.TODO(), job)).To(Succeed())

			var count int64
			Expect(gormdb.Raw("SELECT COUNT(*) FROM jobs").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(int64(1)))

			stored, err := s.Job().Get(context.TODO(), job.Id)
			Expect(err).To(BeNil())
			Expect(stored.Status).To(Equal(api.JobStatusCompleted))
			Expect(stored.Schema).To(Equal("IFC4"))
			Expect(stored.Result).ToNot(BeNil())
			Expect(stored.Result.CsvPath).To(Equal("static/parsed_data/a.csv"))
		})
	})

	Context("list", func() {
		It("returns the jobs in submission order", func() {
			for i := 2; i >= 0; i-- {
				Expect(s.Job().Upsert(context.TODO(), trackedJob(i))).To(Succeed())
			}

			jobs, err := s.Job().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(3))
			for i, job := range jobs {
				Expect(job.Position).To(Equal(i))
			}
		})

		It("returns an empty list for a fresh session", func() {
			jobs, err := s.Job().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(jobs).To(BeEmpty())
		})
	})

	Context("targeted updates", func() {
		It("updates the selection flag only", func() {
			job := trackedJob(0)
			Expect(s.Job().Upsert(context.TODO(), job)).To(Succeed())

			Expect(s.Job().UpdateSelection(context.TODO(), job.Id, false)).To(Succeed())

			stored, err := s.Job().Get(context.TODO(), job.Id)
			Expect(err).To(BeNil())
			Expect(stored.Selected).To(BeFalse())
			Expect(stored.Status).To(Equal(api.JobStatusProcessing))
		})

		It("updates the category only", func() {
			job := trackedJob(0)
			Expect(s.Job().Upsert(context.TODO(), job)).To(Succeed())

			Expect(s.Job().UpdateCategory(context.TODO(), job.Id, registry.CategoryStructural)).To(Succeed())

			stored, err := s.Job().Get(context.TODO(), job.Id)
			Expect(err).To(BeNil())
			Expect(stored.Category).To(Equal(registry.CategoryStructural))
		})

		It("reports an unknown id", func() {
			err := s.Job().UpdateSelection(context.TODO(), uuid.NewString(), true)
			Expect(errors.Is(err, store.ErrRecordNotFound)).To(BeTrue())
		})
	})

	Context("get", func() {
		It("reports an unknown id", func() {
			_, err := s.Job().Get(context.TODO(), uuid.NewString())
			Expect(errors.Is(err, store.ErrRecordNotFound)).To(BeTrue())
		})
	})
})
