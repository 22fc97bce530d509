package service

import (
	"errors"

	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/models"
	"github.com/tip-next/internal/repository"
)

var (
	ErrAccountNotFound       = errors.New("account not found")
	ErrWithdrawAmountInvalid = errors.New("withdraw amount invalid")
)

// AccountService 资金账户服务
//
// 结算入账由对账任务直接走仓储完成，这里承载查询与提现侧的
// 冻结/解冻/扣减操作。余额扣减的并发安全由仓储层条件更新保证。
type AccountService struct {
	accountRepo repository.AccountRepository
	ledgerRepo  repository.LedgerRepository
}

// NewAccountService 创建资金账户服务
func NewAccountService(accountRepo repository.AccountRepository, ledgerRepo repository.LedgerRepository) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// GetAccount 获取资金账户（不存在时自动创建）
func (s *AccountService) GetAccount(userID uint) (*models.Account, error) {
	if userID == 0 {
		return nil, ErrAccountNotFound
	}
	return s.accountRepo.GetOrCreate(userID)
}

// ListLedgers 查询资金流水
func (s *AccountService) ListLedgers(filter repository.LedgerListFilter) ([]models.LedgerEntry, int64, error) {
	return s.ledgerRepo.List(filter)
}

// RequestWithdraw 发起提现申请：余额转入冻结
//
// 只做冻结，实际打款由线下/后续流程处理。
// 余额不足时返回 repository.ErrInsufficientBalance。
func (s *AccountService) RequestWithdraw(userID uint, amount models.Money) error {
	if userID == 0 {
		return ErrAccountNotFound
	}
	if !amount.Decimal.IsPositive() {
		return ErrWithdrawAmountInvalid
	}
	if _, err := s.accountRepo.GetOrCreate(userID); err != nil {
		return err
	}
	if err := s.accountRepo.Freeze(userID, amount); err != nil {
		return err
	}
	logger.Infow("withdraw_requested", "user_id", userID, "amount", amount.String())
	return nil
}

// CancelWithdraw 撤销提现：冻结转回余额
func (s *AccountService) CancelWithdraw(userID uint, amount models.Money) error {
	if userID == 0 {
		return ErrAccountNotFound
	}
	if !amount.Decimal.IsPositive() {
		return ErrWithdrawAmountInvalid
	}
	if err := s.accountRepo.Unfreeze(userID, amount); err != nil {
		return err
	}
	logger.Infow("withdraw_cancelled", "user_id", userID, "amount", amount.String())
	return nil
}

// ConfirmWithdraw 提现完成：扣减冻结并累计提现总额
func (s *AccountService) ConfirmWithdraw(userID uint, amount models.Money) error {
	if userID == 0 {
		return ErrAccountNotFound
	}
	if !amount.Decimal.IsPositive() {
		return ErrWithdrawAmountInvalid
	}
	if err := s.accountRepo.DeductFrozen(userID, amount); err != nil {
		return err
	}
	logger.Infow("withdraw_confirmed", "user_id", userID, "amount", amount.String())
	return nil
}
